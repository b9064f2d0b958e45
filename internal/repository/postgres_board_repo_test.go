package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/castboard/internal/model"
)

// PostgresBoardRepoはBoardRepositoryインターフェースを満たすことを検証
func TestPostgresBoardRepo_ImplementsInterface(t *testing.T) {
	var _ BoardRepository = (*PostgresBoardRepo)(nil)
}

// NewPostgresBoardRepoが正しく初期化されることを検証
func TestNewPostgresBoardRepo_Initializes(t *testing.T) {
	repo := NewPostgresBoardRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Boardモデルのフィールドが正しく構築されることを検証
func TestPostgresBoardRepo_BoardModel_Fields(t *testing.T) {
	now := time.Now()
	board := &model.Board{
		ID:      "board-id-1",
		OwnerID: "user-id-1",
		Name:    "通勤プレイリスト",
		Types: []model.BoardType{
			{BoardID: "board-id-1", Name: "ニュース", Color: "blue", DisplayOrder: 0},
			{BoardID: "board-id-1", Name: "技術", Color: "green", DisplayOrder: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if board.OwnerID != "user-id-1" {
		t.Errorf("board.OwnerID = %q, want %q", board.OwnerID, "user-id-1")
	}
	if len(board.Types) != 2 {
		t.Fatalf("len(board.Types) = %d, want 2", len(board.Types))
	}
	if board.Types[1].DisplayOrder != 1 {
		t.Errorf("Types[1].DisplayOrder = %d, want 1", board.Types[1].DisplayOrder)
	}
}

// タグなしボードのTypesがnilでも扱えることを検証
func TestPostgresBoardRepo_BoardModel_NoTypes(t *testing.T) {
	board := &model.Board{
		ID:      "board-id-2",
		OwnerID: "user-id-1",
		Name:    "未分類",
	}

	if len(board.Types) != 0 {
		t.Error("Types should be empty by default")
	}
}
