package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/castboard/internal/auth"
	"github.com/hitoshi/castboard/internal/model"
)

// TestMiddlewareChain_CSRF_Session_WriteLimit は書き込み系エンドポイントの
// ミドルウェアチェーン（CSRF→Session→書き込みレート制限）を通しで検証する。
func TestMiddlewareChain_CSRF_Session_WriteLimit(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        "valid-session",
				UserID:    "user-chain-test",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	csrfMW := NewCSRFMiddleware(CSRFConfig{})
	sessionMW := NewSessionMiddleware(finder)
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	var capturedUserID string
	handler := csrfMW(sessionMW(rl.WriteOperationMiddleware()(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedUserID, _ = auth.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusCreated)
		}),
	)))

	req := httptest.NewRequest(http.MethodPost, "/api/library/followed", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "chain-token"})
	req.Header.Set(csrfHeaderName, "chain-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
	if capturedUserID != "user-chain-test" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-chain-test")
	}
}

// TestMiddlewareChain_CSRFBlocksBeforeSession はCSRF検証失敗時に
// セッション検証まで到達せず403が返ることを検証する。
func TestMiddlewareChain_CSRFBlocksBeforeSession(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			t.Fatal("session finder should not be reached when CSRF fails")
			return nil, nil
		},
	}

	csrfMW := NewCSRFMiddleware(CSRFConfig{})
	sessionMW := NewSessionMiddleware(finder)

	handler := csrfMW(sessionMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/library/followed", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// TestMiddlewareChain_NoSession_Returns401 はCSRFを通過しても
// セッションがなければ401が返ることを検証する。
func TestMiddlewareChain_NoSession_Returns401(t *testing.T) {
	finder := &mockSessionFinder{}

	csrfMW := NewCSRFMiddleware(CSRFConfig{})
	sessionMW := NewSessionMiddleware(finder)

	handler := csrfMW(sessionMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/boards", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "chain-token"})
	req.Header.Set(csrfHeaderName, "chain-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
