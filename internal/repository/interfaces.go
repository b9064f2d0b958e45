// Package repository はデータ永続化のインターフェースを定義する。
// すべての読み書きはオーナーのユーザーIDでスコープされ、
// 他ユーザーの行を観測・変更することはできない。
package repository

import (
	"context"

	"github.com/hitoshi/castboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザー、identity、デフォルト設定行を
	// 同一トランザクションで作成する。設定行はサインアップ時の1回だけ作られる。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連する全テーブルの行はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// BoardRepository はボードとタグ列の永続化インターフェース。
type BoardRepository interface {
	// ListByOwner はオーナーの全ボードを作成日時の新しい順で返す。
	// 各ボードにはdisplay_order昇順（同値は挿入順）のタグ列が展開される。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Board, error)

	// FindByIDAndOwner はオーナースコープでボードを1件取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Board, error)

	// Insert はボード行のみを挿入する。タグ列はInsertTypesで別途挿入する。
	Insert(ctx context.Context, board *model.Board) error

	// InsertTypes はタグ列を入力順のdisplay_orderで一括挿入する。
	InsertTypes(ctx context.Context, boardID string, types []model.BoardTypeInput) error

	// UpdateName はオーナースコープでボード名を更新する。
	// 対象行がない場合はfalseを返す。
	UpdateName(ctx context.Context, id, ownerID, name string) (bool, error)

	// ReplaceTypes は既存タグ列を全削除し、新しいタグ列を入力順で挿入する。
	// 空の入力は全タグの削除を意味する。
	ReplaceTypes(ctx context.Context, boardID string, types []model.BoardTypeInput) error

	// Delete はオーナースコープでボードを削除する。
	// タグ列と保存済み行はストレージ側のCASCADEで削除される。対象がなくてもエラーにしない。
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteAllByOwner はオーナーの全ボードを削除する。
	DeleteAllByOwner(ctx context.Context, ownerID string) error

	// TypesByBoardID はボードのタグ列をdisplay_order昇順で返す。
	TypesByBoardID(ctx context.Context, boardID string) ([]model.BoardType, error)
}

// FollowedPodcastRepository はフォロー状態の永続化インターフェース。
type FollowedPodcastRepository interface {
	// ListByOwner はフォロー一覧をフォロー日時の新しい順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.FollowedPodcast, error)

	// Insert はフォロー行を挿入する。(owner, podcast_id)の一意制約違反は
	// そのまま返すので、呼び出し側がIsUniqueViolationで判定する。
	Insert(ctx context.Context, ownerID string, p *model.FollowedPodcast) error

	// Delete はフォロー行を削除する。対象がなくてもエラーにしない。
	Delete(ctx context.Context, ownerID, podcastID string) error

	// Exists はフォロー中かどうかを返す。
	Exists(ctx context.Context, ownerID, podcastID string) (bool, error)

	// DeleteAllByOwner はオーナーの全フォロー行を削除する。
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

// SavedPodcastRepository は保存済み番組・エピソードの永続化インターフェース。
type SavedPodcastRepository interface {
	// ListByOwner は保存一覧を保存日時の新しい順で返す。
	// boardIDを指定すると対象ボードの保存のみに絞り込む。
	ListByOwner(ctx context.Context, ownerID string, boardID *string) ([]model.SavedPodcast, error)

	// Upsert は(owner, podcast_id, episode_id)をキーにUPSERTする。
	// 衝突時はtitle・image・board・saved_atを上書きする。
	Upsert(ctx context.Context, ownerID string, p *model.SavedPodcast) error

	// Delete は保存行を削除する。episodeIDがnilの場合、その番組の
	// 全保存行（番組単位・エピソード単位の両方）を削除する。
	Delete(ctx context.Context, ownerID, podcastID string, episodeID *string) error

	// Exists は保存済みかどうかを返す。episodeIDがnilの場合は
	// その番組のいずれかの保存行の有無を返す。
	Exists(ctx context.Context, ownerID, podcastID string, episodeID *string) (bool, error)

	// DeleteAllByOwner はオーナーの全保存行を削除する。
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

// ListeningHistoryRepository は再生履歴の永続化インターフェース。
type ListeningHistoryRepository interface {
	// ListByOwner は再生履歴をlast_played_atの新しい順で最大limit件返す。
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.ListeningHistoryEntry, error)

	// Upsert は(owner, episode_id)をキーにUPSERTする。
	// last_played_atは書き込み時刻で常に更新される。
	Upsert(ctx context.Context, ownerID string, e *model.ListeningHistoryEntry) error

	// UpdateProgress は既存行のprogressとlast_played_atのみを更新する。
	// 対象行がない場合はfalseを返す（暗黙の行作成はしない）。
	UpdateProgress(ctx context.Context, ownerID, episodeID string, progress float64) (bool, error)

	// DeleteAllByOwner はオーナーの全履歴行を削除する。
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

// PreferencesRepository はユーザー設定の永続化インターフェース。
type PreferencesRepository interface {
	// FindByUser は設定行を取得する。行が存在しない場合はnilを返す
	// （デフォルト値の補完は呼び出し側の責務）。
	FindByUser(ctx context.Context, userID string) (*model.Preferences, error)

	// Apply は指定されたフィールドのみを更新する。行が存在しない場合は
	// デフォルト値にパッチを適用した行を新規作成する。
	Apply(ctx context.Context, userID string, patch model.PreferencesPatch) error
}
