package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresPreferencesRepo はPostgreSQLを使用したユーザー設定リポジトリ。
// 設定は1ユーザー1行で、サインアップ時に作成される。
type PostgresPreferencesRepo struct {
	db *sql.DB
}

// NewPostgresPreferencesRepo はPostgresPreferencesRepoを生成する。
func NewPostgresPreferencesRepo(db *sql.DB) *PostgresPreferencesRepo {
	return &PostgresPreferencesRepo{db: db}
}

// FindByUser は設定行を取得する。行が存在しない場合はnilを返す。
// デフォルト値への読み替えは呼び出し側の責務。
func (r *PostgresPreferencesRepo) FindByUser(ctx context.Context, userID string) (*model.Preferences, error) {
	p := &model.Preferences{}
	err := r.db.QueryRowContext(ctx,
		`SELECT auto_play, playback_speed, download_quality
		 FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&p.AutoPlay, &p.PlaybackSpeed, &p.DownloadQuality)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	return p, nil
}

// Apply は指定されたフィールドのみを更新する。行が存在しない場合は
// デフォルト値にパッチを適用した行を新規作成する（1ユーザー1行の維持）。
func (r *PostgresPreferencesRepo) Apply(ctx context.Context, userID string, patch model.PreferencesPatch) error {
	if patch.AutoPlay == nil && patch.PlaybackSpeed == nil && patch.DownloadQuality == nil {
		return nil
	}

	// INSERT側の値: デフォルトにパッチを適用
	values := model.DefaultPreferences()
	var setClauses []string
	if patch.AutoPlay != nil {
		values.AutoPlay = *patch.AutoPlay
		setClauses = append(setClauses, "auto_play = EXCLUDED.auto_play")
	}
	if patch.PlaybackSpeed != nil {
		values.PlaybackSpeed = *patch.PlaybackSpeed
		setClauses = append(setClauses, "playback_speed = EXCLUDED.playback_speed")
	}
	if patch.DownloadQuality != nil {
		values.DownloadQuality = *patch.DownloadQuality
		setClauses = append(setClauses, "download_quality = EXCLUDED.download_quality")
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(
		`INSERT INTO user_preferences (user_id, auto_play, playback_speed, download_quality)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET %s`,
		strings.Join(setClauses, ", "),
	)

	_, err := r.db.ExecContext(ctx, query,
		userID, values.AutoPlay, values.PlaybackSpeed, string(values.DownloadQuality),
	)
	if err != nil {
		return fmt.Errorf("設定の更新に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PreferencesRepository = (*PostgresPreferencesRepo)(nil)
