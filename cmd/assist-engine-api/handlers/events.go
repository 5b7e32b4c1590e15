package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
)

// SessionRecorder records session personalization events. Implementations
// are best-effort: a disabled session store swallows writes.
type SessionRecorder interface {
	RecordView(ctx context.Context, shopDomain, sessionID, productID string) error
	SetPreferences(ctx context.Context, shopDomain, sessionID string, prefs assist.UserPreferences) error
}

// EventsHandler ingests personalization events from the storefront widget.
// Recorded views and preferences feed the booster on later resolutions.
type EventsHandler struct {
	logger   *observability.Logger
	recorder SessionRecorder
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(logger *observability.Logger, recorder SessionRecorder) *EventsHandler {
	return &EventsHandler{
		logger:   logger,
		recorder: recorder,
	}
}

type viewEvent struct {
	ShopDomain string `json:"shopDomain"`
	SessionID  string `json:"sessionId"`
	ProductID  string `json:"productId"`
}

type preferencesEvent struct {
	ShopDomain  string                 `json:"shopDomain"`
	SessionID   string                 `json:"sessionId"`
	Preferences assist.UserPreferences `json:"preferences"`
}

// View handles POST /assist/events/view.
func (h *EventsHandler) View(w http.ResponseWriter, r *http.Request) {
	var event viewEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if event.ShopDomain == "" || event.SessionID == "" || event.ProductID == "" {
		writeError(w, http.StatusBadRequest, "shopDomain, sessionId and productId are required", "")
		return
	}

	if err := h.recorder.RecordView(r.Context(), event.ShopDomain, event.SessionID, event.ProductID); err != nil {
		h.logger.WithShop(event.ShopDomain).Warn().Err(err).Msg("Failed to record product view")
		writeError(w, http.StatusInternalServerError, "failed to record view", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Preferences handles PUT /assist/events/preferences.
func (h *EventsHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	var event preferencesEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if event.ShopDomain == "" || event.SessionID == "" {
		writeError(w, http.StatusBadRequest, "shopDomain and sessionId are required", "")
		return
	}

	if err := h.recorder.SetPreferences(r.Context(), event.ShopDomain, event.SessionID, event.Preferences); err != nil {
		h.logger.WithShop(event.ShopDomain).Warn().Err(err).Msg("Failed to store preferences")
		writeError(w, http.StatusInternalServerError, "failed to store preferences", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
