package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutor-central/internal/middleware"
	"tutor-central/internal/redis"
	"tutor-central/internal/repository"
	"tutor-central/internal/resolver"
	"tutor-central/internal/services"
	"tutor-central/internal/storage"
	"tutor-central/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success   bool            `json:"success"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
}

type harness struct {
	engine  *gin.Engine
	objects *storage.MemoryStore
}

func newHarness(t *testing.T, limits redis.RateLimitConfig) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	objects := storage.NewMemoryStore("https://cdn.example.com")
	log := logger.NewNop()
	tokens := services.NewTokenService("handler-secret", time.Hour)
	r := resolver.New(resolver.Services{
		Accounts: services.NewAccountService(store.Accounts(), tokens, log),
		Chats:    services.NewChatService(store.Accounts(), store.Chats(), store.Messages(), log),
		Messages: services.NewMessageService(store.Accounts(), store.Chats(), store.Messages()),
		Uploads:  services.NewUploadService(store.Accounts(), objects, services.UploadConfig{MaxBytes: 1 << 20}, log),
		Tokens:   tokens,
	}, log)

	mr := miniredis.RunT(t)
	rc := redis.NewClient(redis.Config{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = rc.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.IdentityMiddleware(r))
	engine.POST("/v1/query", middleware.RateLimitMiddleware(redis.NewRateLimiter(rc, limits)), NewQueryHandler(r, 1<<20).Query)
	return &harness{engine: engine, objects: objects}
}

func (h *harness) query(t *testing.T, token, op string, vars any) (int, envelope) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"operation": op, "variables": vars})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.do(t, token, req)
}

func (h *harness) upload(t *testing.T, token string, file []byte) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("operation", "singleUpload"))
	part, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/query", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return h.do(t, token, req)
}

func (h *harness) do(t *testing.T, token string, req *http.Request) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type authData struct {
	Token   string         `json:"token"`
	Account map[string]any `json:"account"`
}

func signup(t *testing.T, h *harness, op, username string) authData {
	t.Helper()
	status, env := h.query(t, "", op, map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	return decodeData[authData](t, env)
}

func TestConversationOverHTTP(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, redis.DefaultRateLimitConfig())

	tutor := signup(t, h, "addTutor", "tina")
	student := signup(t, h, "addStudent", "stan")
	req.NotContains(tutor.Account, "passwordHash")
	req.NotContains(tutor.Account, "PasswordHash")
	req.Equal("tutor", tutor.Account["role"])

	status, env := h.query(t, student.Token, "createChat", map[string]any{"tutorId": tutor.Account["id"]})
	req.Equal(http.StatusOK, status, env.Error)
	chatID := decodeData[map[string]any](t, env)["id"]

	status, env = h.query(t, student.Token, "addMessage", map[string]any{"chatId": chatID, "messageText": "hello"})
	req.Equal(http.StatusOK, status, env.Error)
	req.Equal("addMessage", env.Operation)

	status, env = h.query(t, tutor.Token, "chat", map[string]any{"id": chatID})
	req.Equal(http.StatusOK, status, env.Error)
	view := decodeData[struct {
		Messages []struct {
			Text string         `json:"messageText"`
			From map[string]any `json:"from"`
			To   map[string]any `json:"to"`
		} `json:"messages"`
	}](t, env)
	req.Len(view.Messages, 1)
	req.Equal("hello", view.Messages[0].Text)
	req.Equal(student.Account["id"], view.Messages[0].From["id"])
	req.Equal(tutor.Account["id"], view.Messages[0].To["id"])

	status, env = h.query(t, student.Token, "createChat", map[string]any{"tutorId": tutor.Account["id"]})
	req.Equal(http.StatusOK, status)
	req.Equal(chatID, decodeData[map[string]any](t, env)["id"])
}

func TestQueryErrors(t *testing.T) {
	h := newHarness(t, redis.DefaultRateLimitConfig())
	student := signup(t, h, "addStudent", "erin")

	tests := []struct {
		name       string
		token      string
		op         string
		vars       any
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous addMessage", op: "addMessage", vars: map[string]any{"chatId": "00000000-0000-0000-0000-000000000001", "messageText": "hi"}, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "anonymous me", op: "me", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "bad credential", token: "bogus", op: "me", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "unknown operation", op: "dropTables", wantStatus: http.StatusBadRequest, wantCode: "BAD_USER_INPUT"},
		{name: "missing variables", token: student.Token, op: "createChat", wantStatus: http.StatusBadRequest, wantCode: "BAD_USER_INPUT"},
		{name: "missing user", op: "user", vars: map[string]any{"username": "nobody"}, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "duplicate signup", op: "addStudent", vars: map[string]any{"username": "erin", "email": "erin@example.com", "password": "correct horse"}, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.query(t, tt.token, tt.op, tt.vars)
			require.Equal(t, tt.wantStatus, status)
			require.False(t, env.Success)
			require.Equal(t, tt.wantCode, env.Code)
			require.NotEmpty(t, env.Error)
		})
	}
}

func TestSingleUpload(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, redis.DefaultRateLimitConfig())
	student := signup(t, h, "addStudent", "pics")

	var img bytes.Buffer
	req.NoError(png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	status, env := h.upload(t, "", img.Bytes())
	req.Equal(http.StatusUnauthorized, status)
	req.Equal("UNAUTHENTICATED", env.Code)
	req.Equal(0, h.objects.Len())

	status, env = h.upload(t, student.Token, img.Bytes())
	req.Equal(http.StatusOK, status, env.Error)
	account := decodeData[map[string]any](t, env)
	req.Contains(account["photo"], "https://cdn.example.com/")
	req.Equal(1, h.objects.Len())

	status, env = h.upload(t, student.Token, []byte("plain text is not an image"))
	req.Equal(http.StatusBadRequest, status)
	req.Equal("BAD_USER_INPUT", env.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	req := require.New(t)
	h := newHarness(t, redis.RateLimitConfig{AuthLimit: 3, AuthWindow: time.Minute, MessageLimit: 10, MessageWindow: time.Minute})
	signup(t, h, "addTutor", "limited")

	for i := 0; i < 2; i++ {
		status, env := h.query(t, "", "login", map[string]any{"email": "limited@example.com", "password": "wrong password"})
		req.Equal(http.StatusUnauthorized, status)
		req.Equal("UNAUTHENTICATED", env.Code)
	}

	status, env := h.query(t, "", "login", map[string]any{"email": "limited@example.com", "password": "correct horse"})
	req.Equal(http.StatusTooManyRequests, status)
	req.Equal("RATE_LIMITED", env.Code)

	status, _ = h.query(t, "", "tutors", nil)
	req.Equal(http.StatusOK, status)
}
