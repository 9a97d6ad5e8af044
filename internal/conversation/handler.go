package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/commerce-chat/pkg/logging"
)

// maxChatBodyBytes bounds request bodies; inline media makes them large.
const maxChatBodyBytes = 20 << 20

// ChatService is the orchestrator surface the handler needs.
type ChatService interface {
	Handle(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// Handler wires HTTP requests to the chat orchestrator.
type Handler struct {
	service ChatService
	logger  *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(service ChatService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode chat request", "error", err)
		h.writeError(w, http.StatusBadRequest, decodeErrorMessage(err))
		return
	}

	resp, err := h.service.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		// The orchestrator absorbs backend failures; anything else is a bug.
		h.logger.Error("chat request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}

func decodeErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return "request body too large"
	case errors.Is(err, ErrValidation):
		return validationMessage(err)
	default:
		return "request body must be a JSON object"
	}
}
