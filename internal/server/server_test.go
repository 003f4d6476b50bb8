package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutor-central/config"
	"tutor-central/internal/repository"
	"tutor-central/internal/resolver"
	"tutor-central/internal/services"
	"tutor-central/internal/storage"
	"tutor-central/pkg/logger"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, health HealthFunc) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	log := logger.NewNop()
	tokens := services.NewTokenService("server-secret", time.Hour)
	r := resolver.New(resolver.Services{
		Accounts: services.NewAccountService(store.Accounts(), tokens, log),
		Chats:    services.NewChatService(store.Accounts(), store.Chats(), store.Messages(), log),
		Messages: services.NewMessageService(store.Accounts(), store.Chats(), store.Messages()),
		Uploads:  services.NewUploadService(store.Accounts(), storage.NewMemoryStore("http://localhost/objects"), services.UploadConfig{}, log),
		Tokens:   tokens,
	}, log)

	s := New(&config.Config{AppPort: "0", AppMode: TestMode, UploadMaxBytes: 1 << 20}, log)
	s.SetupRoutes(r, nil, health)
	return s
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name   string
		health HealthFunc
		method string
		path   string
		body   string
		want   int
	}{
		{name: "ping", method: http.MethodGet, path: "/ping", want: http.StatusOK},
		{name: "healthy", health: func() error { return nil }, method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "unhealthy", health: func() error { return errors.New("db down") }, method: http.MethodGet, path: "/health", want: http.StatusServiceUnavailable},
		{name: "query", method: http.MethodPost, path: "/v1/query", body: `{"operation":"tutors"}`, want: http.StatusOK},
		{name: "query without operation", method: http.MethodPost, path: "/v1/query", body: `{}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.health)
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			s.Engine().ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}
