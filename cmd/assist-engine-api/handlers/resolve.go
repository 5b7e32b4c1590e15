// Package handlers provides HTTP handlers for the assist engine API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/resolve"
)

// ResolveHandler handles chat resolution requests.
type ResolveHandler struct {
	logger   *observability.Logger
	resolver *resolve.Resolver
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(logger *observability.Logger, resolver *resolve.Resolver) *ResolveHandler {
	return &ResolveHandler{
		logger:   logger,
		resolver: resolver,
	}
}

// Resolve handles POST /assist/resolve. The resolver itself never fails, so
// the only error paths here are malformed request bodies.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assist.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.UserMessage == "" {
		writeError(w, http.StatusBadRequest, "userMessage is required", "")
		return
	}
	if req.Context.ShopDomain == "" {
		writeError(w, http.StatusBadRequest, "context.shopDomain is required", "")
		return
	}

	resp := h.resolver.Resolve(ctx, &req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// Metrics handles GET /assist/metrics.
func (h *ResolveHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.resolver.Metrics().Snapshot()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode metrics")
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Details: details})
}
