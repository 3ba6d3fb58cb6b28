package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/chat"
)

const (
	testChatID = "7c2e4f10-3b6a-4d8e-9f21-5a6b7c8d0001"
	testUserID = "7c2e4f10-3b6a-4d8e-9f21-5a6b7c8d0002"
	otherID    = "7c2e4f10-3b6a-4d8e-9f21-5a6b7c8d0003"
)

type stubService struct {
	chat.Service

	userID string
	other  string
	sent   chat.SendRequest
	limit  int
	skip   int
	query  string
	err    error
}

func (s *stubService) GetOrCreate(_ context.Context, userID, otherUserID string) (*chat.Chat, error) {
	s.userID, s.other = userID, otherUserID
	if s.err != nil {
		return nil, s.err
	}
	return &chat.Chat{ID: testChatID, Participants: []chat.Participant{{UserID: userID}, {UserID: otherUserID}}}, nil
}

func (s *stubService) Messages(_ context.Context, _, userID string, limit, offset int) ([]*chat.Message, error) {
	s.userID, s.limit, s.skip = userID, limit, offset
	return nil, s.err
}

func (s *stubService) Send(_ context.Context, req chat.SendRequest) (*chat.Message, error) {
	s.sent = req
	if s.err != nil {
		return nil, s.err
	}
	return &chat.Message{ID: "m1", ChatID: req.ChatID, SenderID: req.SenderID, Content: req.Content, Kind: chat.KindText}, nil
}

func (s *stubService) Users(_ context.Context, userID, query string) ([]chat.Participant, error) {
	s.userID, s.query = userID, query
	return nil, s.err
}

func (s *stubService) MarkRead(_ context.Context, _, userID string) error {
	s.userID = userID
	return s.err
}

func newTestRouter(t *testing.T, svc chat.Service) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := auth.NewJWTManager("chat-handler-secret", time.Hour)
	token, err := jwt.GenerateAccessToken(testUserID, "me@example.com")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwt))
	return r, token
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatRoutes_RequireAuth(t *testing.T) {
	r, _ := newTestRouter(t, &stubService{})

	for _, path := range []string{"/v1/chats", "/v1/chats/users", "/v1/chats/" + testChatID} {
		w := do(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCreate_UsesCallerAsParticipant(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := do(r, http.MethodPost, "/v1/chats", token, gin.H{"other_user_id": otherID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, svc.userID)
	assert.Equal(t, otherID, svc.other)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testChatID, resp.ID)
	assert.Len(t, resp.Participants, 2)

	w = do(r, http.MethodPost, "/v1/chats", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = chat.ErrSelfChat
	w = do(r, http.MethodPost, "/v1/chats", token, gin.H{"other_user_id": testUserID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSend(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)
	path := "/v1/chats/" + testChatID + "/messages"

	w := do(r, http.MethodPost, path, token, gin.H{"content": "see you on court 2"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, chat.SendRequest{ChatID: testChatID, SenderID: testUserID, Content: "see you on court 2"}, svc.sent)

	w = do(r, http.MethodPost, path, token, gin.H{"content": "clip", "type": "video"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/chats/not-a-uuid/messages", token, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = chat.ErrNotParticipant
	w = do(r, http.MethodPost, path, token, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMessages_PassesPaging(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/chats/"+testChatID+"/messages?limit=20&skip=40", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, svc.limit)
	assert.Equal(t, 40, svc.skip)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	w = do(r, http.MethodGet, "/v1/chats/"+testChatID+"/messages?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersAndMarkRead(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := do(r, http.MethodGet, "/v1/chats/users?q=kim", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kim", svc.query)

	w = do(r, http.MethodPost, "/v1/chats/"+testChatID+"/read", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testUserID, svc.userID)

	svc.err = chat.ErrNotFound
	w = do(r, http.MethodPost, "/v1/chats/"+testChatID+"/read", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
