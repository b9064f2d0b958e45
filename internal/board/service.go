// Package board はボードとタグ列のドメインロジックを提供する。
package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/castboard/internal/auth"
	"github.com/hitoshi/castboard/internal/model"
	"github.com/hitoshi/castboard/internal/repository"
)

// UpdateInput はボード更新の入力。nilのフィールドは変更しない。
// Typesに空スライスを渡すと全タグの削除を意味する（nilとは区別される）。
type UpdateInput struct {
	Name  *string
	Types *[]model.BoardTypeInput
}

// Service はボード管理のサービス層。
// 一覧・作成・更新・削除とタグ列の入れ替えのビジネスロジックを提供する。
type Service struct {
	boardRepo repository.BoardRepository
	users     auth.UserSource
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(boardRepo repository.BoardRepository, users auth.UserSource) *Service {
	return &Service{
		boardRepo: boardRepo,
		users:     users,
	}
}

// ListBoards は呼び出しユーザーの全ボードをタグ列付きで返す。
// 作成日時の新しい順、タグ列はdisplay_order昇順。
// 失敗しない読み取り: 未認証・取得エラーのいずれも空スライスを返し、
// エラーはログに残すだけで呼び出し側には伝播しない。
func (s *Service) ListBoards(ctx context.Context) []*model.Board {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return []*model.Board{}
	}

	boards, err := s.boardRepo.ListByOwner(ctx, userID)
	if err != nil {
		slog.Warn("ボード一覧の取得に失敗（空として返却）",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []*model.Board{}
	}
	if boards == nil {
		boards = []*model.Board{}
	}
	return boards
}

// CreateBoard はボードとタグ列を作成する。
// ボード行を先に挿入して生成IDを確定させ、その後タグ列を挿入する
// 2段階書き込みであり、原子的ではない: タグ挿入が失敗した場合、
// タグなしのボードが残ったままエラーを返す（呼び出し側がタグを再投入できる）。
func (s *Service) CreateBoard(ctx context.Context, name string, types []model.BoardTypeInput) (*model.Board, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return nil, model.NewAuthRequiredError()
	}

	if name == "" {
		return nil, model.NewEmptyBoardNameError()
	}

	now := time.Now()
	b := &model.Board{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.boardRepo.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("ボードの作成に失敗しました: %w", err)
	}

	if err := s.boardRepo.InsertTypes(ctx, b.ID, types); err != nil {
		// ボード行は残る。タグなしボードとして観測可能な状態になる。
		slog.Warn("タグ列の挿入に失敗（タグなしボードが残存）",
			slog.String("board_id", b.ID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("タグ列の作成に失敗しました: %w", err)
	}

	created, err := s.boardRepo.FindByIDAndOwner(ctx, b.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("作成後のボード取得に失敗しました: %w", err)
	}
	if created == nil {
		return nil, model.NewBoardNotFoundError(b.ID)
	}
	return created, nil
}

// UpdateBoard はボード名とタグ列を更新する。
// 名前の更新はボード行のみを触る。タグ列の更新は破壊的入れ替え:
// 既存タグを全削除し、新しい順序列を丸ごと挿入する。空スライスは全削除。
// 更新後のボードを再取得して返す。
func (s *Service) UpdateBoard(ctx context.Context, id string, input UpdateInput) (*model.Board, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return nil, model.NewAuthRequiredError()
	}

	// オーナースコープで存在確認。他ユーザー所有はNotFound扱い。
	existing, err := s.boardRepo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ボードの取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewBoardNotFoundError(id)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, model.NewEmptyBoardNameError()
		}
		updated, err := s.boardRepo.UpdateName(ctx, id, userID, *input.Name)
		if err != nil {
			return nil, fmt.Errorf("ボード名の更新に失敗しました: %w", err)
		}
		if !updated {
			return nil, model.NewBoardNotFoundError(id)
		}
	}

	if input.Types != nil {
		if err := s.boardRepo.ReplaceTypes(ctx, id, *input.Types); err != nil {
			return nil, fmt.Errorf("タグ列の入れ替えに失敗しました: %w", err)
		}
	}

	reloaded, err := s.boardRepo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("更新後のボード取得に失敗しました: %w", err)
	}
	if reloaded == nil {
		return nil, model.NewBoardNotFoundError(id)
	}
	return reloaded, nil
}

// DeleteBoard はボードを削除する。タグ列と保存済み行のボード紐付けは
// ストレージ側のCASCADEで処理される。対象がなくてもエラーにしない。
func (s *Service) DeleteBoard(ctx context.Context, id string) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.boardRepo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("ボードの削除に失敗しました: %w", err)
	}
	return nil
}

// GetBoardByID はオーナースコープでボードを1件取得する。
// 存在しない、または他ユーザー所有の場合は(nil, nil)を返す。
func (s *Service) GetBoardByID(ctx context.Context, id string) (*model.Board, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return nil, nil
	}

	b, err := s.boardRepo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("ボードの取得に失敗しました: %w", err)
	}
	return b, nil
}

// ClearAllBoards は呼び出しユーザーの全ボードを削除する。
func (s *Service) ClearAllBoards(ctx context.Context) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.boardRepo.DeleteAllByOwner(ctx, userID); err != nil {
		return fmt.Errorf("全ボードの削除に失敗しました: %w", err)
	}
	return nil
}
