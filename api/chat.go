package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askphys/askphys/internal/chat"
	"github.com/askphys/askphys/internal/log"
)

// Tutor answers questions. Satisfied by *chat.Tutor.
type Tutor interface {
	Ask(ctx context.Context, question string, history []chat.Turn) (chat.Answer, error)
}

// ChatRequest is the POST /api/chat request body.
type ChatRequest struct {
	Question string      `json:"question"`
	History  []chat.Turn `json:"history,omitempty"`
}

// ChatHandler handles the question answering endpoint.
type ChatHandler struct {
	tutor  Tutor
	logger log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(tutor Tutor, logger log.Logger) *ChatHandler {
	return &ChatHandler{tutor: tutor, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

// handleChat answers one question.
//
// Request body: {"question": "...", "history": [{"role": "...", "content": "..."}]}
// Response: {"answer": "...", "sources": ["..."]}
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	answer, err := h.tutor.Ask(r.Context(), req.Question, req.History)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "EMPTY_QUESTION", "question is required")
			return
		}
		h.logger.Error("chat request failed",
			"error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "CHAT_FAILED", "failed to answer question")
		return
	}

	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	writeJSON(w, http.StatusOK, answer)
}
