package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/middleware"
	"github.com/set-night/stanbot/internal/service"
)

//go:embed static
var staticFS embed.FS

// Chat is the part of the chat service the HTTP surface needs.
type Chat interface {
	HandleTurn(ctx context.Context, displayName, conversationSlot, utterance string) ([]domain.MessageTurn, error)
	History(ctx context.Context, displayName, conversationSlot string) ([]domain.MessageTurn, error)
}

type Server struct {
	chat    Chat
	timeout time.Duration
}

func NewServer(chat Chat) *Server {
	return &Server{chat: chat, timeout: config.RequestTimeout}
}

// Message mirrors the {role, content} shape the chat widget renders.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Name         string `json:"name"`
	Conversation string `json:"conversation"`
	Message      string `json:"message"`

	// History is the view the client already holds. The store is
	// authoritative, so it is accepted and not used.
	History []Message `json:"history,omitempty"`
}

type transcriptResponse struct {
	Transcript []Message `json:"transcript"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Reply string `json:"reply,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServerFS(static))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	return middleware.RecoverHTTP(middleware.LoggingHTTP(mux))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	transcript, err := s.chat.HandleTurn(ctx, req.Name, req.Conversation, req.Message)
	if err != nil {
		status, body := errorToResponse(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: toMessages(transcript)})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transcript, err := s.chat.History(r.Context(), q.Get("name"), q.Get("conversation"))
	if err != nil {
		status, body := errorToResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: toMessages(transcript)})
}

func errorToResponse(err error) (int, errorResponse) {
	var werr *service.StoreWriteError
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, errorResponse{Error: "message is empty", Code: "empty_message"}
	case errors.As(err, &werr):
		return http.StatusInternalServerError, errorResponse{
			Error: "reply was generated but could not be saved; this exchange may be forgotten",
			Code:  "store_write",
			Reply: werr.Reply,
		}
	case errors.Is(err, domain.ErrGeneration):
		msg := "the assistant could not reply, please try again"
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			msg = "too many requests to the assistant, try again later"
		case errors.Is(err, context.DeadlineExceeded):
			msg = "the assistant took too long to reply"
		}
		return http.StatusBadGateway, errorResponse{Error: msg, Code: "generation"}
	case errors.Is(err, domain.ErrSessionBusy):
		return http.StatusGatewayTimeout, errorResponse{Error: "a previous message in this conversation is still being answered", Code: "busy"}
	case errors.Is(err, domain.ErrStoreRead):
		return http.StatusInternalServerError, errorResponse{Error: "conversation history is unavailable", Code: "store_read"}
	default:
		slog.Error("unexpected chat error", "error", err)
		return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"}
	}
}

func toMessages(turns []domain.MessageTurn) []Message {
	out := make([]Message, len(turns))
	for i, t := range turns {
		out[i] = Message{Role: string(t.Role), Content: t.Text}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
