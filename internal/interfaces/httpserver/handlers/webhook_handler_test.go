package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/bot"
	"instareply/internal/domain/conversation"
	"instareply/internal/infrastructure/instagram"
	"instareply/internal/interfaces/httpserver/handlers"
)

// MockStore is a func-field mock of conversation.Store.
type MockStore struct {
	IsPausedFunc          func(ctx context.Context, userID string) (bool, error)
	SetPausedFunc         func(ctx context.Context, userID string, paused bool) error
	UpsertStateFunc       func(ctx context.Context, userID string, patch conversation.StatePatch) error
	ListStatesFunc        func(ctx context.Context) ([]conversation.State, error)
	AppendMessageFunc     func(ctx context.Context, userID, role, content string) error
	RecentHistoryFunc     func(ctx context.Context, userID string, limit int) ([]conversation.Message, error)
	HistoryFunc           func(ctx context.Context, userID string) ([]conversation.Message, error)
	TryClaimMessageIDFunc func(ctx context.Context, providerID string) (bool, error)
}

func (m *MockStore) IsPaused(ctx context.Context, userID string) (bool, error) {
	if m.IsPausedFunc != nil {
		return m.IsPausedFunc(ctx, userID)
	}
	return false, nil
}

func (m *MockStore) SetPaused(ctx context.Context, userID string, paused bool) error {
	if m.SetPausedFunc != nil {
		return m.SetPausedFunc(ctx, userID, paused)
	}
	return nil
}

func (m *MockStore) UpsertState(ctx context.Context, userID string, patch conversation.StatePatch) error {
	if m.UpsertStateFunc != nil {
		return m.UpsertStateFunc(ctx, userID, patch)
	}
	return nil
}

func (m *MockStore) ListStates(ctx context.Context) ([]conversation.State, error) {
	if m.ListStatesFunc != nil {
		return m.ListStatesFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) AppendMessage(ctx context.Context, userID, role, content string) error {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, userID, role, content)
	}
	return nil
}

func (m *MockStore) RecentHistory(ctx context.Context, userID string, limit int) ([]conversation.Message, error) {
	if m.RecentHistoryFunc != nil {
		return m.RecentHistoryFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockStore) History(ctx context.Context, userID string) ([]conversation.Message, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) TryClaimMessageID(ctx context.Context, providerID string) (bool, error) {
	if m.TryClaimMessageIDFunc != nil {
		return m.TryClaimMessageIDFunc(ctx, providerID)
	}
	return true, nil
}

type MockResponder struct {
	RespondFunc func(ctx context.Context, userID, userMessage string, simulated bool) (*bot.Result, error)
	calls       int
}

func (m *MockResponder) Respond(ctx context.Context, userID, userMessage string, simulated bool) (*bot.Result, error) {
	m.calls++
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, userID, userMessage, simulated)
	}
	return &bot.Result{ReplyText: "ok"}, nil
}

type MockProfiles struct {
	FetchProfileFunc func(ctx context.Context, userID string) (*instagram.Profile, error)
}

func (m *MockProfiles) FetchProfile(ctx context.Context, userID string) (*instagram.Profile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, userID)
	}
	return nil, nil
}

func newWebhookRouter(store *MockStore, responder *MockResponder, profiles *MockProfiles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewWebhookHandler("verify-secret", "bot-account", store, responder, profiles, zerolog.Nop())
	router := gin.New()
	router.GET("/api/instagram-webhook", handler.Verify)
	router.POST("/api/instagram-webhook", handler.Receive)
	return router
}

func messageBody(object, senderID, mid, text string, echo bool) []byte {
	payload := map[string]any{
		"object": object,
		"entry": []map[string]any{{
			"messaging": []map[string]any{{
				"sender":    map[string]string{"id": senderID},
				"recipient": map[string]string{"id": "bot-account"},
				"message": map[string]any{
					"mid":     mid,
					"text":    text,
					"is_echo": echo,
				},
			}},
		}},
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestVerifySubscription(t *testing.T) {
	router := newWebhookRouter(&MockStore{}, &MockResponder{}, &MockProfiles{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid handshake echoes challenge",
			query:      "hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=12345",
			wantStatus: http.StatusOK,
			wantBody:   "12345",
		},
		{
			name:       "wrong token is forbidden",
			query:      "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong mode is forbidden",
			query:      "hub.mode=unsubscribe&hub.verify_token=verify-secret&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing params is a bad request",
			query:      "hub.challenge=12345",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/instagram-webhook?"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestReceiveProcessesMessage(t *testing.T) {
	upserted := false
	store := &MockStore{
		UpsertStateFunc: func(ctx context.Context, userID string, patch conversation.StatePatch) error {
			if userID != "sender-1" {
				t.Errorf("unexpected user: %q", userID)
			}
			upserted = true
			return nil
		},
	}
	responder := &MockResponder{
		RespondFunc: func(ctx context.Context, userID, userMessage string, simulated bool) (*bot.Result, error) {
			if userID != "sender-1" || userMessage != "hello" || simulated {
				t.Errorf("unexpected turn: user=%q msg=%q simulated=%v", userID, userMessage, simulated)
			}
			return &bot.Result{ReplyText: "hi"}, nil
		},
	}
	router := newWebhookRouter(store, responder, &MockProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "EVENT_RECEIVED" {
		t.Errorf("expected EVENT_RECEIVED, got %q", rec.Body.String())
	}
	if responder.calls != 1 {
		t.Errorf("expected one turn, got %d", responder.calls)
	}
	if !upserted {
		t.Error("expected conversation state upsert")
	}
}

func TestReceiveSkipsDuplicate(t *testing.T) {
	store := &MockStore{
		TryClaimMessageIDFunc: func(ctx context.Context, providerID string) (bool, error) {
			return false, nil
		},
	}
	responder := &MockResponder{}
	router := newWebhookRouter(store, responder, &MockProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("duplicates are acknowledged, got %d", rec.Code)
	}
	if responder.calls != 0 {
		t.Error("duplicate message must not trigger a turn")
	}
}

func TestReceiveFailsClosedOnClaimError(t *testing.T) {
	store := &MockStore{
		TryClaimMessageIDFunc: func(ctx context.Context, providerID string) (bool, error) {
			return false, context.DeadlineExceeded
		},
	}
	responder := &MockResponder{}
	router := newWebhookRouter(store, responder, &MockProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("claim errors are acknowledged, got %d", rec.Code)
	}
	if responder.calls != 0 {
		t.Error("claim error must skip the event")
	}
}

func TestReceiveProcessesMessagesWithoutProviderID(t *testing.T) {
	claimed := map[string]bool{}
	store := &MockStore{
		TryClaimMessageIDFunc: func(ctx context.Context, providerID string) (bool, error) {
			if providerID == "" {
				t.Error("claim must never be attempted for an empty provider ID")
			}
			if claimed[providerID] {
				return false, nil
			}
			claimed[providerID] = true
			return true, nil
		},
	}
	responder := &MockResponder{}
	router := newWebhookRouter(store, responder, &MockProfiles{})

	for _, text := range []string{"first", "second"} {
		req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
			bytes.NewReader(messageBody("instagram", "sender-1", "", text, false)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	if responder.calls != 2 {
		t.Errorf("expected both ID-less messages to trigger turns, got %d", responder.calls)
	}
}

func TestReceiveSkipsEchoAndSelf(t *testing.T) {
	responder := &MockResponder{}
	router := newWebhookRouter(&MockStore{}, responder, &MockProfiles{})

	echo := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-echo", "hello", true)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, echo)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for echo, got %d", rec.Code)
	}

	self := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "bot-account", "mid-self", "hello", false)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, self)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for self message, got %d", rec.Code)
	}

	if responder.calls != 0 {
		t.Errorf("echo and self messages must be skipped, got %d turns", responder.calls)
	}
}

func TestReceiveUnknownObject(t *testing.T) {
	responder := &MockResponder{}
	router := newWebhookRouter(&MockStore{}, responder, &MockProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("whatsapp", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown object, got %d", rec.Code)
	}
	if responder.calls != 0 {
		t.Error("unknown object must not trigger a turn")
	}
}

func TestReceiveTurnErrorStillAcknowledged(t *testing.T) {
	responder := &MockResponder{
		RespondFunc: func(ctx context.Context, userID, userMessage string, simulated bool) (*bot.Result, error) {
			return nil, context.DeadlineExceeded
		},
	}
	router := newWebhookRouter(&MockStore{}, responder, &MockProfiles{})

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("per-event failures must not fail the delivery, got %d", rec.Code)
	}
}

func TestReceiveCachesProfile(t *testing.T) {
	var patch conversation.StatePatch
	store := &MockStore{
		UpsertStateFunc: func(ctx context.Context, userID string, p conversation.StatePatch) error {
			patch = p
			return nil
		},
	}
	profiles := &MockProfiles{
		FetchProfileFunc: func(ctx context.Context, userID string) (*instagram.Profile, error) {
			return &instagram.Profile{Name: "Jane", Username: "jane_doe", ProfilePic: "http://pic"}, nil
		},
	}
	router := newWebhookRouter(store, &MockResponder{}, profiles)

	req := httptest.NewRequest(http.MethodPost, "/api/instagram-webhook",
		bytes.NewReader(messageBody("instagram", "sender-1", "mid-1", "hello", false)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if patch.UserName == nil || *patch.UserName != "Jane" {
		t.Errorf("expected cached name, got %v", patch.UserName)
	}
	if patch.Username == nil || *patch.Username != "jane_doe" {
		t.Errorf("expected cached username, got %v", patch.Username)
	}
	if patch.LastMessageAt.IsZero() {
		t.Error("expected last_message_at to be bumped")
	}
}
