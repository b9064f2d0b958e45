package auth

import "sync"

// SessionEventKind はセッション変化イベントの種別。
type SessionEventKind string

const (
	// SessionStarted はログイン（セッション発行）を表す。
	SessionStarted SessionEventKind = "started"
	// SessionEnded はログアウト（セッション破棄）を表す。
	SessionEnded SessionEventKind = "ended"
)

// SessionEvent はセッションの変化を表す。
type SessionEvent struct {
	Kind   SessionEventKind
	UserID string
}

// Listener はセッション変化イベントの受信関数。
// Publishと同じゴルーチンで同期的に呼ばれるため、ブロックする処理を入れないこと。
type Listener func(SessionEvent)

// Notifier はセッション変化のsubscribe/notify機構。
// グローバルな認証状態をアンビエントに参照する代わりに、
// 関心を持つコンポーネント（メトリクス等）が明示的に購読する。
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewNotifier はNotifierを生成する。
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe はリスナーを登録する。登録解除の仕組みは提供しない
// （リスナーはプロセスと同寿命のコンポーネントを想定）。
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Publish は全リスナーに同期的にイベントを配信する。
func (n *Notifier) Publish(ev SessionEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, l := range n.listeners {
		l(ev)
	}
}
