package auth

import "context"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// ContextWithUserID はコンテキストに認証済みユーザーIDを注入する。
// セッションミドルウェアとテストから使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext はコンテキストから認証済みユーザーIDを取り出す。
// 未認証の場合はfalseを返す。
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// UserSource は現在の認証済みユーザーIDを解決するインターフェース。
// ボード・ライブラリの各サービスはこのインターフェース越しにのみ
// 認証状態を観測し、未認証時の挙動（空結果・デフォルト値・AUTH_REQUIRED）を
// 操作ごとの契約に従って決める。
type UserSource interface {
	// CurrentUserID は現在のユーザーIDを返す。未認証の場合はfalseを返す。
	CurrentUserID(ctx context.Context) (string, bool)
}

// ContextUserSource はリクエストコンテキストからユーザーIDを解決するUserSource。
// セッションミドルウェアが注入した値をそのまま返す。
type ContextUserSource struct{}

// CurrentUserID はコンテキストからユーザーIDを返す。
func (ContextUserSource) CurrentUserID(ctx context.Context) (string, bool) {
	return UserIDFromContext(ctx)
}

// compile-time interface check
var _ UserSource = ContextUserSource{}
