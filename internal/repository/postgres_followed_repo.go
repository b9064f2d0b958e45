package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresFollowedRepo はPostgreSQLを使用したフォローリポジトリ。
type PostgresFollowedRepo struct {
	db *sql.DB
}

// NewPostgresFollowedRepo はPostgresFollowedRepoを生成する。
func NewPostgresFollowedRepo(db *sql.DB) *PostgresFollowedRepo {
	return &PostgresFollowedRepo{db: db}
}

// ListByOwner はフォロー一覧をフォロー日時の新しい順で返す。
func (r *PostgresFollowedRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.FollowedPodcast, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT podcast_id, title, publisher, image_url, followed_at
		 FROM followed_podcasts WHERE user_id = $1 ORDER BY followed_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var followed []model.FollowedPodcast
	for rows.Next() {
		var f model.FollowedPodcast
		if err := rows.Scan(&f.PodcastID, &f.Title, &f.Publisher, &f.Image, &f.FollowedAt); err != nil {
			return nil, fmt.Errorf("フォロー行の読み取りに失敗しました: %w", err)
		}
		followed = append(followed, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー一覧の走査に失敗しました: %w", err)
	}
	return followed, nil
}

// Insert はフォロー行を挿入する。followed_atはストレージ側のnow()で採番される。
// (user_id, podcast_id)の一意制約違反はラップせずそのまま返す。
// 呼び出し側がIsUniqueViolationで「既にフォロー済み」を判定するため。
func (r *PostgresFollowedRepo) Insert(ctx context.Context, ownerID string, p *model.FollowedPodcast) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO followed_podcasts (user_id, podcast_id, title, publisher, image_url)
		 VALUES ($1, $2, $3, $4, $5)`,
		ownerID, p.PodcastID, p.Title, p.Publisher, p.Image,
	)
	if err != nil {
		return err
	}
	return nil
}

// Delete はフォロー行を削除する。対象がなくてもエラーにしない。
func (r *PostgresFollowedRepo) Delete(ctx context.Context, ownerID, podcastID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followed_podcasts WHERE user_id = $1 AND podcast_id = $2`,
		ownerID, podcastID,
	)
	if err != nil {
		return fmt.Errorf("フォロー解除に失敗しました: %w", err)
	}
	return nil
}

// Exists はフォロー中かどうかを返す。
func (r *PostgresFollowedRepo) Exists(ctx context.Context, ownerID, podcastID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM followed_podcasts WHERE user_id = $1 AND podcast_id = $2
		 )`,
		ownerID, podcastID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// DeleteAllByOwner はオーナーの全フォロー行を削除する。
func (r *PostgresFollowedRepo) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followed_podcasts WHERE user_id = $1`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("全フォロー行の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FollowedPodcastRepository = (*PostgresFollowedRepo)(nil)
