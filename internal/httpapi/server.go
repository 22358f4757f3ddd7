// Package httpapi exposes the conversation service over HTTP and
// websocket.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"supportstack.local/projects/support-gateway/internal/gateway"
	"supportstack.local/projects/support-gateway/internal/session"
)

const maxRequestBytes int64 = 1 << 20

type server struct {
	logger  *log.Logger
	gateway *gateway.Service
}

func NewServer(logger *log.Logger, addr string, gatewayService *gateway.Service) *http.Server {
	h := &server{
		logger:  logger,
		gateway: gatewayService,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/v1/chat/start", h.handleStart)
	mux.HandleFunc("/v1/chat/message", h.handleMessage)
	mux.HandleFunc("/v1/chat/escalate", h.handleEscalate)
	mux.HandleFunc("/v1/chat/decline", h.handleDecline)
	mux.HandleFunc("/v1/chat/history", h.handleHistory)
	mux.HandleFunc("/v1/chat/ws", h.handleWS)
	mux.HandleFunc("/v1/topics", h.handleTopics)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rec, welcome, err := s.gateway.StartConversation(r.Context())
	if err != nil {
		s.logger.Printf("start conversation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not start a conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":      rec.SessionID,
		"welcome_message": welcome,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req messageRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	result, err := s.gateway.ProcessTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type escalateRequest struct {
	SessionID string `json:"session_id"`
	UserQuery string `json:"user_query"`
}

func (s *server) handleEscalate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req escalateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	result, err := s.gateway.Escalate(r.Context(), req.SessionID, req.UserQuery)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type declineRequest struct {
	SessionID string `json:"session_id"`
}

func (s *server) handleDecline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req declineRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	rec, err := s.gateway.Decline(r.Context(), req.SessionID)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     rec.SessionID,
		"current_agent":  rec.CurrentAgent,
		"pending_action": rec.PendingAction,
		"closed":         rec.Closed,
	})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	turns, err := s.gateway.History(r.Context(), sessionID, 0)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}

func (s *server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": s.gateway.Topics()})
}

type wsInbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsOutbound struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
	Result    *gateway.Result `json:"result,omitempty"`
}

// handleWS runs a chat conversation over one websocket connection. The
// server opens a session, announces it, then answers each "message"
// frame with a "response" frame.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: isWebSocketOriginAllowed}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("chat ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxRequestBytes)

	rec, welcome, err := s.gateway.StartConversation(r.Context())
	if err != nil {
		_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "could not start a conversation"})
		return
	}
	if err := conn.WriteJSON(wsOutbound{Type: "connected", SessionID: rec.SessionID, Message: welcome}); err != nil {
		return
	}

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("chat ws read failed session_id=%s: %v", rec.SessionID, err)
			}
			return
		}
		if inbound.Type != "message" {
			_ = conn.WriteJSON(wsOutbound{Type: "error", SessionID: rec.SessionID, Error: "unsupported frame type"})
			continue
		}
		if strings.TrimSpace(inbound.Message) == "" {
			_ = conn.WriteJSON(wsOutbound{Type: "error", SessionID: rec.SessionID, Error: "message is required"})
			continue
		}

		result, err := s.gateway.ProcessTurn(r.Context(), rec.SessionID, inbound.Message)
		if err != nil {
			kind, msg := classifyTurnError(err)
			_ = conn.WriteJSON(wsOutbound{Type: "error", SessionID: rec.SessionID, Error: fmt.Sprintf("%s: %s", kind, msg)})
			if errors.Is(err, gateway.ErrSessionClosed) || errors.Is(err, gateway.ErrSessionNotFound) {
				return
			}
			continue
		}
		if err := conn.WriteJSON(wsOutbound{Type: "response", SessionID: rec.SessionID, Result: &result}); err != nil {
			return
		}
		if result.ConversationClosed {
			return
		}
	}
}

func (s *server) writeTurnError(w http.ResponseWriter, err error) {
	kind, msg := classifyTurnError(err)
	switch kind {
	case "session_not_found":
		writeError(w, http.StatusNotFound, kind, msg)
	case "session_closed":
		writeError(w, http.StatusConflict, kind, msg)
	case "queue_full":
		writeError(w, http.StatusTooManyRequests, kind, msg)
	case "collaborator_unavailable", "ticket_creation_failed":
		writeError(w, http.StatusServiceUnavailable, kind, msg)
	case "invalid_request":
		writeError(w, http.StatusBadRequest, kind, msg)
	default:
		s.logger.Printf("turn failed: %v", err)
		writeError(w, http.StatusInternalServerError, kind, msg)
	}
}

func classifyTurnError(err error) (kind, message string) {
	switch {
	case errors.Is(err, gateway.ErrSessionNotFound):
		return "session_not_found", "no conversation with that session_id"
	case errors.Is(err, gateway.ErrSessionClosed):
		return "session_closed", "this conversation has ended; start a new one"
	case errors.Is(err, session.ErrSessionQueueFull):
		return "queue_full", "too many pending messages for this conversation, try again shortly"
	case errors.Is(err, gateway.ErrCollaboratorUnavailable):
		return "collaborator_unavailable", "a backend service is unavailable, please try again"
	case errors.Is(err, gateway.ErrTicketCreation):
		return "ticket_creation_failed", "we could not file your ticket, please try again"
	case errors.Is(err, gateway.ErrEmptyMessage):
		return "invalid_request", "message is required"
	default:
		return "internal_error", "something went wrong"
	}
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %v", err)
	}
	if dec.More() {
		return errors.New("invalid json: trailing content")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{
		"error":   kind,
		"message": message,
	})
}

func isWebSocketOriginAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	parsedOrigin, err := url.Parse(origin)
	if err != nil || strings.TrimSpace(parsedOrigin.Host) == "" {
		return false
	}
	return strings.EqualFold(parsedOrigin.Host, r.Host)
}
