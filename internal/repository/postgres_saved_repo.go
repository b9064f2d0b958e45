package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresSavedRepo はPostgreSQLを使用した保存済み番組・エピソードリポジトリ。
type PostgresSavedRepo struct {
	db *sql.DB
}

// NewPostgresSavedRepo はPostgresSavedRepoを生成する。
func NewPostgresSavedRepo(db *sql.DB) *PostgresSavedRepo {
	return &PostgresSavedRepo{db: db}
}

// ListByOwner は保存一覧を保存日時の新しい順で返す。
// boardIDを指定すると対象ボードの保存のみに絞り込む。
func (r *PostgresSavedRepo) ListByOwner(ctx context.Context, ownerID string, boardID *string) ([]model.SavedPodcast, error) {
	query := `SELECT podcast_id, episode_id, title, image_url, board_id, saved_at
	          FROM saved_podcasts WHERE user_id = $1`
	args := []any{ownerID}
	if boardID != nil {
		query += ` AND board_id = $2`
		args = append(args, *boardID)
	}
	query += ` ORDER BY saved_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("保存一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var saved []model.SavedPodcast
	for rows.Next() {
		var s model.SavedPodcast
		var episodeID, board sql.NullString
		if err := rows.Scan(&s.PodcastID, &episodeID, &s.Title, &s.Image, &board, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("保存行の読み取りに失敗しました: %w", err)
		}
		if episodeID.Valid {
			s.EpisodeID = &episodeID.String
		}
		if board.Valid {
			s.BoardID = &board.String
		}
		saved = append(saved, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("保存一覧の走査に失敗しました: %w", err)
	}
	return saved, nil
}

// Upsert は(owner, podcast_id, episode_id)をキーにUPSERTする。
// 一意制約はNULLS NOT DISTINCTなので、episode_idがNULL同士でも衝突が検出され、
// 再保存はtitle・image・board・saved_atの上書きになる。
func (r *PostgresSavedRepo) Upsert(ctx context.Context, ownerID string, p *model.SavedPodcast) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_podcasts (user_id, podcast_id, episode_id, title, image_url, board_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, podcast_id, episode_id) DO UPDATE SET
		     title = EXCLUDED.title,
		     image_url = EXCLUDED.image_url,
		     board_id = EXCLUDED.board_id,
		     saved_at = now()`,
		ownerID, p.PodcastID, nullableString(p.EpisodeID), p.Title, p.Image, nullableString(p.BoardID),
	)
	if err != nil {
		return fmt.Errorf("保存に失敗しました: %w", err)
	}
	return nil
}

// Delete は保存行を削除する。episodeIDがnilの場合はその番組の全保存行
// （番組単位・エピソード単位の両方）を削除する。対象がなくてもエラーにしない。
func (r *PostgresSavedRepo) Delete(ctx context.Context, ownerID, podcastID string, episodeID *string) error {
	var err error
	if episodeID != nil {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM saved_podcasts WHERE user_id = $1 AND podcast_id = $2 AND episode_id = $3`,
			ownerID, podcastID, *episodeID,
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM saved_podcasts WHERE user_id = $1 AND podcast_id = $2`,
			ownerID, podcastID,
		)
	}
	if err != nil {
		return fmt.Errorf("保存の解除に失敗しました: %w", err)
	}
	return nil
}

// Exists は保存済みかどうかを返す。episodeIDがnilの場合は
// その番組のいずれかの保存行の有無を返す。
func (r *PostgresSavedRepo) Exists(ctx context.Context, ownerID, podcastID string, episodeID *string) (bool, error) {
	var exists bool
	var err error
	if episodeID != nil {
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS (
			     SELECT 1 FROM saved_podcasts
			     WHERE user_id = $1 AND podcast_id = $2 AND episode_id = $3
			 )`,
			ownerID, podcastID, *episodeID,
		).Scan(&exists)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS (
			     SELECT 1 FROM saved_podcasts WHERE user_id = $1 AND podcast_id = $2
			 )`,
			ownerID, podcastID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("保存状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// DeleteAllByOwner はオーナーの全保存行を削除する。
func (r *PostgresSavedRepo) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_podcasts WHERE user_id = $1`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("全保存行の削除に失敗しました: %w", err)
	}
	return nil
}

// nullableString は*stringをsql.NullStringに変換する。
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// compile-time interface check
var _ SavedPodcastRepository = (*PostgresSavedRepo)(nil)
