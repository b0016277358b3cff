package layout

import (
	"encoding/json"
	"log"
	"net/http"

	"Monitor/internal/api/middleware"
	"Monitor/internal/core/layout"
	"Monitor/internal/core/posts"
)

// ColumnOrderResponse is the client's column order
type ColumnOrderResponse struct {
	Order []posts.Category `json:"order"`
}

// SaveColumnOrderRequest is the body of a column reorder
type SaveColumnOrderRequest struct {
	Order []string `json:"order"`
}

// Handler serves the per-client column order
type Handler struct {
	service layout.Service
}

// NewHandler creates a new layout handler
func NewHandler(service layout.Service) *Handler {
	return &Handler{service: service}
}

// HandleGetColumnOrder returns the stored order, or the default
// GET /api/layout
func (h *Handler) HandleGetColumnOrder(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r)
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "MissingClient", "No client session")
		return
	}

	order, err := h.service.GetColumnOrder(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeOrder(w, order)
}

// HandleSaveColumnOrder stores a new column order
// PUT /api/layout
func (h *Handler) HandleSaveColumnOrder(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r)
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "MissingClient", "No client session")
		return
	}

	var req SaveColumnOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	order, err := h.service.SaveColumnOrder(r.Context(), clientID, req.Order)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeOrder(w, order)
}

// HandleResetColumnOrder drops the stored order and returns the default
// DELETE /api/layout
func (h *Handler) HandleResetColumnOrder(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r)
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "MissingClient", "No client session")
		return
	}

	order, err := h.service.ResetColumnOrder(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeOrder(w, order)
}

func writeOrder(w http.ResponseWriter, order []posts.Category) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ColumnOrderResponse{Order: order}); err != nil {
		log.Printf("ERROR: Failed to encode layout response: %v", err)
	}
}
