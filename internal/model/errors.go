// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, board, library, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthRequired        = "AUTH_REQUIRED"
	ErrCodeBoardNotFound       = "BOARD_NOT_FOUND"
	ErrCodeEmptyBoardName      = "EMPTY_BOARD_NAME"
	ErrCodeEpisodeNotInHistory = "EPISODE_NOT_IN_HISTORY"
	ErrCodeInvalidProgress     = "INVALID_PROGRESS"
	ErrCodeInvalidPreferences  = "INVALID_PREFERENCES"
	ErrCodePodcastNotFound     = "PODCAST_NOT_FOUND"
	ErrCodeInvalidFeedURL      = "INVALID_FEED_URL"
	ErrCodeCatalogUnavailable  = "CATALOG_UNAVAILABLE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewAuthRequiredError は未認証の書き込み操作に対するエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "この操作にはログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewBoardNotFoundError はボード未検出エラーを生成する。
// 他ユーザー所有のボードも「存在しない」として同じエラーを返す。
func NewBoardNotFoundError(boardID string) *APIError {
	return &APIError{
		Code:     ErrCodeBoardNotFound,
		Message:  fmt.Sprintf("指定されたボードが見つかりません: %s", boardID),
		Category: "board",
		Action:   "ボードIDを確認してください。",
	}
}

// NewEmptyBoardNameError はボード名が空の場合のエラーを生成する。
func NewEmptyBoardNameError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyBoardName,
		Message:  "ボード名を入力してください。",
		Category: "validation",
		Action:   "1文字以上のボード名を指定してください。",
	}
}

// NewEpisodeNotInHistoryError は再生履歴に存在しないエピソードへの進捗更新エラーを生成する。
func NewEpisodeNotInHistoryError(episodeID string) *APIError {
	return &APIError{
		Code:     ErrCodeEpisodeNotInHistory,
		Message:  fmt.Sprintf("再生履歴に存在しないエピソードです: %s", episodeID),
		Category: "library",
		Action:   "先に再生を記録してから進捗を更新してください。",
	}
}

// NewInvalidProgressError は範囲外の再生進捗エラーを生成する。
func NewInvalidProgressError(progress float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProgress,
		Message:  fmt.Sprintf("無効な再生進捗です: %.1f", progress),
		Category: "validation",
		Action:   "進捗は0から100の範囲で指定してください。",
	}
}

// NewInvalidPreferencesError は無効な設定値エラーを生成する。
func NewInvalidPreferencesError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPreferences,
		Message:  fmt.Sprintf("無効な設定値です: %s", reason),
		Category: "validation",
		Action:   "再生速度は正の数、ダウンロード品質は high、medium、low のいずれかを指定してください。",
	}
}

// NewPodcastNotFoundError はカタログ上で番組が見つからない場合のエラーを生成する。
func NewPodcastNotFoundError(podcastID string) *APIError {
	return &APIError{
		Code:     ErrCodePodcastNotFound,
		Message:  fmt.Sprintf("指定された番組が見つかりません: %s", podcastID),
		Category: "catalog",
		Action:   "番組IDを確認してください。",
	}
}

// NewInvalidFeedURLError は無効なRSSフィードURLエラーを生成する。
func NewInvalidFeedURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFeedURL,
		Message:  fmt.Sprintf("無効なフィードURLです: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる公開URLを指定してください。",
	}
}

// NewCatalogUnavailableError はカタログサービス呼び出し失敗エラーを生成する。
func NewCatalogUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeCatalogUnavailable,
		Message:  "ポッドキャストカタログの取得に失敗しました。",
		Category: "catalog",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
