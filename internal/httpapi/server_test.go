package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"supportstack.local/projects/support-gateway/internal/agents"
	"supportstack.local/projects/support-gateway/internal/gateway"
	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/orders"
	"supportstack.local/projects/support-gateway/internal/retrieval"
	"supportstack.local/projects/support-gateway/internal/session"
	"supportstack.local/projects/support-gateway/internal/ticket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	svc := gateway.NewService(gateway.Config{
		Logger:     logger,
		Store:      session.NewMemoryStore(),
		Classifier: intent.NewKeywordClassifier(),
		FAQ:        agents.NewFAQAgent(logger, retrieval.NewStaticIndex(), 0),
		OrderQuery: agents.NewOrderQueryAgent(logger, orders.NewMemoryLookup(nil)),
		Escalation: agents.NewEscalationAgent(logger, ticket.NewMemoryStore(), 0),
	})
	ts := httptest.NewServer(NewServer(logger, "127.0.0.1:0", svc).Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func startConversation(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/v1/chat/start", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body struct {
		SessionID      string `json:"session_id"`
		WelcomeMessage string `json:"welcome_message"`
	}
	decodeBody(t, resp, &body)
	if body.SessionID == "" {
		t.Fatalf("expected a session_id")
	}
	if body.WelcomeMessage == "" {
		t.Fatalf("expected a welcome message")
	}
	return body.SessionID
}

func TestStartAndMessage(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startConversation(t, ts)

	resp := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{
		"session_id": sessionID,
		"message":    "What is your return policy?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var result gateway.Result
	decodeBody(t, resp, &result)
	if result.Response == "" {
		t.Fatalf("expected a response")
	}
	if result.Intent == "" {
		t.Fatalf("expected an intent")
	}
}

func TestMessageUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{
		"session_id": "does-not-exist",
		"message":    "hello",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)
	if body.Error != "session_not_found" {
		t.Fatalf("unexpected error kind: %q", body.Error)
	}
}

func TestMessageValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{"message": "hi"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing session_id: unexpected status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/v1/chat/message", map[string]any{"session_id": "x", "unknown_field": true})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field: unexpected status %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/v1/chat/message", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	getResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: unexpected status %d", getResp.StatusCode)
	}
}

func TestEscalateAndDecline(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startConversation(t, ts)

	resp := postJSON(t, ts.URL+"/v1/chat/escalate", map[string]any{
		"session_id": sessionID,
		"user_query": "my order arrived damaged",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("escalate: unexpected status %d", resp.StatusCode)
	}
	var result gateway.Result
	decodeBody(t, resp, &result)
	if result.CurrentAgent != session.AgentEscalation {
		t.Fatalf("expected the escalation agent, got %q", result.CurrentAgent)
	}

	resp = postJSON(t, ts.URL+"/v1/chat/decline", map[string]any{"session_id": sessionID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decline: unexpected status %d", resp.StatusCode)
	}
	var declined struct {
		SessionID     string `json:"session_id"`
		CurrentAgent  string `json:"current_agent"`
		PendingAction string `json:"pending_action"`
		Closed        bool   `json:"closed"`
	}
	decodeBody(t, resp, &declined)
	if declined.CurrentAgent != "" || declined.PendingAction != "" {
		t.Fatalf("decline must release the pin, got agent=%q pending=%q", declined.CurrentAgent, declined.PendingAction)
	}
	if declined.Closed {
		t.Fatalf("decline must leave the session open")
	}
}

func TestHistory(t *testing.T) {
	ts := newTestServer(t)
	sessionID := startConversation(t, ts)

	resp := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{
		"session_id": sessionID,
		"message":    "How long does shipping take?",
	})
	resp.Body.Close()

	histResp, err := http.Get(ts.URL + "/v1/chat/history?session_id=" + sessionID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if histResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", histResp.StatusCode)
	}
	var body struct {
		SessionID string         `json:"session_id"`
		Turns     []session.Turn `json:"turns"`
	}
	decodeBody(t, histResp, &body)
	if len(body.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(body.Turns))
	}
	if body.Turns[0].Role != session.RoleUser {
		t.Fatalf("expected the user turn first, got %s", body.Turns[0].Role)
	}
}

func TestTopics(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/topics")
	if err != nil {
		t.Fatalf("get topics: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body struct {
		Topics []gateway.Topic `json:"topics"`
	}
	decodeBody(t, resp, &body)
	if len(body.Topics) == 0 {
		t.Fatalf("expected topics")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketChat(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	var connected wsOutbound
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected frame: %v", err)
	}
	if connected.Type != "connected" {
		t.Fatalf("unexpected frame type: %q", connected.Type)
	}
	if connected.SessionID == "" {
		t.Fatalf("expected a session_id")
	}

	if err := conn.WriteJSON(wsInbound{Type: "message", Message: "Do you ship internationally?"}); err != nil {
		t.Fatalf("write message frame: %v", err)
	}

	var response wsOutbound
	if err := conn.ReadJSON(&response); err != nil {
		t.Fatalf("read response frame: %v", err)
	}
	if response.Type != "response" {
		t.Fatalf("unexpected frame type: %q", response.Type)
	}
	if response.Result == nil || response.Result.Response == "" {
		t.Fatalf("expected a response payload")
	}

	if err := conn.WriteJSON(wsInbound{Type: "bogus"}); err != nil {
		t.Fatalf("write bogus frame: %v", err)
	}
	var errFrame wsOutbound
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if errFrame.Type != "error" {
		t.Fatalf("unexpected frame type: %q", errFrame.Type)
	}
}
