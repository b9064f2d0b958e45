package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresBoardRepo はPostgreSQLを使用したボードリポジトリ。
// boardsとboard_typesの2テーブルを扱う。
type PostgresBoardRepo struct {
	db *sql.DB
}

// NewPostgresBoardRepo はPostgresBoardRepoを生成する。
func NewPostgresBoardRepo(db *sql.DB) *PostgresBoardRepo {
	return &PostgresBoardRepo{db: db}
}

// ListByOwner はオーナーの全ボードを作成日時の新しい順で返す。
// タグ列は全ボード分を1クエリで取得してマージする。
func (r *PostgresBoardRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM boards WHERE user_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ボード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var boards []*model.Board
	byID := make(map[string]*model.Board)
	for rows.Next() {
		b := &model.Board{Types: []model.BoardType{}}
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ボード行の読み取りに失敗しました: %w", err)
		}
		boards = append(boards, b)
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ボード一覧の走査に失敗しました: %w", err)
	}

	if len(boards) == 0 {
		return boards, nil
	}

	typeRows, err := r.db.QueryContext(ctx,
		`SELECT board_id, name, color, display_order
		 FROM board_types
		 WHERE board_id IN (SELECT id FROM boards WHERE user_id = $1)
		 ORDER BY display_order ASC, seq ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("タグ列の取得に失敗しました: %w", err)
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var t model.BoardType
		if err := typeRows.Scan(&t.BoardID, &t.Name, &t.Color, &t.DisplayOrder); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		if b, ok := byID[t.BoardID]; ok {
			b.Types = append(b.Types, t)
		}
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("タグ列の走査に失敗しました: %w", err)
	}

	return boards, nil
}

// FindByIDAndOwner はオーナースコープでボードを1件取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresBoardRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Board, error) {
	b := &model.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM boards WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&b.ID, &b.OwnerID, &b.Name, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ボードの取得に失敗しました: %w", err)
	}

	types, err := r.TypesByBoardID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Types = types

	return b, nil
}

// Insert はボード行のみを挿入する。
func (r *PostgresBoardRepo) Insert(ctx context.Context, board *model.Board) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		board.ID, board.OwnerID, board.Name, board.CreatedAt, board.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ボードの作成に失敗しました: %w", err)
	}
	return nil
}

// InsertTypes はタグ列を入力順のdisplay_orderで一括挿入する。
func (r *PostgresBoardRepo) InsertTypes(ctx context.Context, boardID string, types []model.BoardTypeInput) error {
	if len(types) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := insertTypesTx(ctx, tx, boardID, types); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// UpdateName はオーナースコープでボード名を更新する。対象行がない場合はfalseを返す。
func (r *PostgresBoardRepo) UpdateName(ctx context.Context, id, ownerID, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE boards SET name = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, ownerID, name,
	)
	if err != nil {
		return false, fmt.Errorf("ボード名の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// ReplaceTypes は既存タグ列を全削除し、新しいタグ列を入力順で挿入する。
// 削除と挿入は同一トランザクションで行う。空の入力は全削除のみ行う。
func (r *PostgresBoardRepo) ReplaceTypes(ctx context.Context, boardID string, types []model.BoardTypeInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM board_types WHERE board_id = $1`,
		boardID,
	); err != nil {
		return fmt.Errorf("既存タグ列の削除に失敗しました: %w", err)
	}

	if err := insertTypesTx(ctx, tx, boardID, types); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE boards SET updated_at = now() WHERE id = $1`,
		boardID,
	); err != nil {
		return fmt.Errorf("ボード更新日時の更新に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// Delete はオーナースコープでボードを削除する。対象がなくてもエラーにしない。
// タグ列と保存済み行はストレージ側のCASCADEで削除される。
func (r *PostgresBoardRepo) Delete(ctx context.Context, id, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM boards WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("ボードの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteAllByOwner はオーナーの全ボードを削除する。
func (r *PostgresBoardRepo) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM boards WHERE user_id = $1`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("全ボードの削除に失敗しました: %w", err)
	}
	return nil
}

// TypesByBoardID はボードのタグ列をdisplay_order昇順（同値は挿入順）で返す。
func (r *PostgresBoardRepo) TypesByBoardID(ctx context.Context, boardID string) ([]model.BoardType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT board_id, name, color, display_order
		 FROM board_types WHERE board_id = $1
		 ORDER BY display_order ASC, seq ASC`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("タグ列の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	types := []model.BoardType{}
	for rows.Next() {
		var t model.BoardType
		if err := rows.Scan(&t.BoardID, &t.Name, &t.Color, &t.DisplayOrder); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タグ列の走査に失敗しました: %w", err)
	}
	return types, nil
}

// insertTypesTx はトランザクション内でタグ列を入力順に挿入する。
func insertTypesTx(ctx context.Context, tx *sql.Tx, boardID string, types []model.BoardTypeInput) error {
	for i, t := range types {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO board_types (board_id, name, color, display_order)
			 VALUES ($1, $2, $3, $4)`,
			boardID, t.Name, t.Color, i,
		); err != nil {
			return fmt.Errorf("タグ行の挿入に失敗しました: %w", err)
		}
	}
	return nil
}

// compile-time interface check
var _ BoardRepository = (*PostgresBoardRepo)(nil)
