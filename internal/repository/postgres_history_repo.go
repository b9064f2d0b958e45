package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresHistoryRepo はPostgreSQLを使用した再生履歴リポジトリ。
type PostgresHistoryRepo struct {
	db *sql.DB
}

// NewPostgresHistoryRepo はPostgresHistoryRepoを生成する。
func NewPostgresHistoryRepo(db *sql.DB) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{db: db}
}

// ListByOwner は再生履歴をlast_played_atの新しい順で最大limit件返す。
// limitが0以下の場合は全件返す。
func (r *PostgresHistoryRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.ListeningHistoryEntry, error) {
	query := `SELECT episode_id, podcast_id, title, image_url, progress, duration, last_played_at
	          FROM listening_history WHERE user_id = $1 ORDER BY last_played_at DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("再生履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []model.ListeningHistoryEntry
	for rows.Next() {
		var e model.ListeningHistoryEntry
		if err := rows.Scan(&e.EpisodeID, &e.PodcastID, &e.Title, &e.Image, &e.Progress, &e.Duration, &e.LastPlayedAt); err != nil {
			return nil, fmt.Errorf("履歴行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("再生履歴の走査に失敗しました: %w", err)
	}
	return entries, nil
}

// Upsert は(owner, episode_id)をキーにUPSERTする。
// last_played_atは挿入・更新のどちらでも書き込み時刻に更新される。
func (r *PostgresHistoryRepo) Upsert(ctx context.Context, ownerID string, e *model.ListeningHistoryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listening_history
		     (user_id, episode_id, podcast_id, title, image_url, progress, duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, episode_id) DO UPDATE SET
		     podcast_id = EXCLUDED.podcast_id,
		     title = EXCLUDED.title,
		     image_url = EXCLUDED.image_url,
		     progress = EXCLUDED.progress,
		     duration = EXCLUDED.duration,
		     last_played_at = now()`,
		ownerID, e.EpisodeID, e.PodcastID, e.Title, e.Image, e.Progress, e.Duration,
	)
	if err != nil {
		return fmt.Errorf("再生履歴の書き込みに失敗しました: %w", err)
	}
	return nil
}

// UpdateProgress は既存行のprogressとlast_played_atのみを更新する。
// 対象行がない場合はfalseを返す（暗黙の行作成はしない）。
func (r *PostgresHistoryRepo) UpdateProgress(ctx context.Context, ownerID, episodeID string, progress float64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE listening_history SET progress = $3, last_played_at = now()
		 WHERE user_id = $1 AND episode_id = $2`,
		ownerID, episodeID, progress,
	)
	if err != nil {
		return false, fmt.Errorf("再生進捗の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteAllByOwner はオーナーの全履歴行を削除する。
func (r *PostgresHistoryRepo) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM listening_history WHERE user_id = $1`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("全履歴行の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ListeningHistoryRepository = (*PostgresHistoryRepo)(nil)
