package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/policy"
)

// PolicyHandler handles shop policy cache operations.
type PolicyHandler struct {
	logger *observability.Logger
	cache  *policy.Cache
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(logger *observability.Logger, cache *policy.Cache) *PolicyHandler {
	return &PolicyHandler{
		logger: logger,
		cache:  cache,
	}
}

// Get handles GET /shops/{shop}/policies. It serves the cached entry or
// triggers a fetch on miss.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required", "")
		return
	}

	policies, err := h.cache.Get(r.Context(), shop)
	if err != nil {
		writeError(w, http.StatusBadGateway, "policy fetch failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(policies); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode policies")
	}
}

// Invalidate handles DELETE /shops/{shop}/policies/cache. Merchants call
// this after editing policies so the next chat turn sees fresh text.
func (h *PolicyHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required", "")
		return
	}

	if err := h.cache.Invalidate(r.Context(), shop); err != nil {
		writeError(w, http.StatusInternalServerError, "invalidation failed", err.Error())
		return
	}

	h.logger.WithShop(shop).Info().Msg("Policy cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}
