package imagesearch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type Handler struct {
	client *Client
	logger *slog.Logger
}

func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

type generateRequest struct {
	ProductName string `json:"product_name"`
}

type generateResponse struct {
	Msg      string `json:"msg,omitempty"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := strings.TrimSpace(req.ProductName)
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "missing product_name")
		return
	}

	imageURL, err := h.client.Lookup(r.Context(), query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "image search failed", "error", err, "query", query)
		h.writeJSON(w, http.StatusInternalServerError, generateResponse{
			Msg:      "image search failed",
			ImageURL: h.client.Placeholder("Error"),
		})
		return
	}

	if imageURL == "" {
		h.logger.InfoContext(r.Context(), "no image found", "query", query)
		h.writeJSON(w, http.StatusOK, generateResponse{
			Msg:      "no images found",
			ImageURL: h.client.Placeholder(query),
		})
		return
	}

	h.logger.InfoContext(r.Context(), "image found", "query", query)
	h.writeJSON(w, http.StatusOK, generateResponse{ImageURL: imageURL})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
