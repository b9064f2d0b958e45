package auth

import (
	"context"
	"sync"
	"testing"
)

// Subscribeしたリスナー全員にイベントが配信されることを検証
func TestNotifier_Publish_DeliversToAllListeners(t *testing.T) {
	n := NewNotifier()

	var got1, got2 []SessionEvent
	n.Subscribe(func(ev SessionEvent) { got1 = append(got1, ev) })
	n.Subscribe(func(ev SessionEvent) { got2 = append(got2, ev) })

	n.Publish(SessionEvent{Kind: SessionStarted, UserID: "user-1"})
	n.Publish(SessionEvent{Kind: SessionEnded, UserID: "user-1"})

	for i, got := range [][]SessionEvent{got1, got2} {
		if len(got) != 2 {
			t.Fatalf("listener %d received %d events, want 2", i+1, len(got))
		}
		if got[0].Kind != SessionStarted || got[0].UserID != "user-1" {
			t.Errorf("listener %d event[0] = %+v, want started/user-1", i+1, got[0])
		}
		if got[1].Kind != SessionEnded {
			t.Errorf("listener %d event[1].Kind = %q, want %q", i+1, got[1].Kind, SessionEnded)
		}
	}
}

// リスナー未登録でもPublishがパニックしないことを検証
func TestNotifier_Publish_NoListeners(t *testing.T) {
	n := NewNotifier()
	n.Publish(SessionEvent{Kind: SessionStarted, UserID: "user-1"})
}

// 並行Publishと並行Subscribeが競合しないことを検証
func TestNotifier_ConcurrentPublishAndSubscribe(t *testing.T) {
	n := NewNotifier()

	var mu sync.Mutex
	count := 0
	n.Subscribe(func(SessionEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			n.Publish(SessionEvent{Kind: SessionStarted, UserID: "user-c"})
		}()
		go func() {
			defer wg.Done()
			n.Subscribe(func(SessionEvent) {})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("first listener received %d events, want 10", count)
	}
}

// コンテキスト経由のユーザーID伝搬を検証
func TestUserIDFromContext_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-ctx")

	got, ok := UserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected ok = true")
	}
	if got != "user-ctx" {
		t.Errorf("userID = %q, want %q", got, "user-ctx")
	}
}

// 未設定コンテキストではok=falseが返ることを検証
func TestUserIDFromContext_Missing(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("expected ok = false for empty context")
	}
}

// ContextUserSourceがUserSourceインターフェースを満たし、コンテキストから読み取ることを検証
func TestContextUserSource_CurrentUserID(t *testing.T) {
	var src UserSource = ContextUserSource{}

	ctx := ContextWithUserID(context.Background(), "user-src")
	got, ok := src.CurrentUserID(ctx)
	if !ok || got != "user-src" {
		t.Errorf("CurrentUserID = (%q, %v), want (user-src, true)", got, ok)
	}

	if _, ok := src.CurrentUserID(context.Background()); ok {
		t.Error("expected ok = false without user in context")
	}
}
