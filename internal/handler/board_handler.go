package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/castboard/internal/board"
	"github.com/hitoshi/castboard/internal/model"
)

// BoardServiceInterface はボードハンドラーが必要とするサービスインターフェース。
type BoardServiceInterface interface {
	// ListBoards はユーザーのボード一覧を返す。未認証・取得失敗時は空スライスを返す。
	ListBoards(ctx context.Context) []*model.Board
	// CreateBoard は新しいボードをタグ列とともに作成する。
	CreateBoard(ctx context.Context, name string, types []model.BoardTypeInput) (*model.Board, error)
	// UpdateBoard は名前・タグ列を部分更新する。
	UpdateBoard(ctx context.Context, id string, input board.UpdateInput) (*model.Board, error)
	// DeleteBoard はボードと所属タグを削除する。
	DeleteBoard(ctx context.Context, id string) error
	// GetBoardByID はボードを取得する。未認証・不在時は(nil, nil)を返す。
	GetBoardByID(ctx context.Context, id string) (*model.Board, error)
	// ClearAllBoards は呼び出しユーザーの全ボードを削除する。
	ClearAllBoards(ctx context.Context) error
}

// BoardHandler はボード管理のHTTPハンドラー。
type BoardHandler struct {
	service BoardServiceInterface
}

// NewBoardHandler はBoardHandlerを生成する。
func NewBoardHandler(service BoardServiceInterface) *BoardHandler {
	return &BoardHandler{
		service: service,
	}
}

// boardTypeResponse はボードタグのAPIレスポンス。
type boardTypeResponse struct {
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"display_order"`
}

// boardResponse はボード情報のAPIレスポンス。
type boardResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Types     []boardTypeResponse `json:"types"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// boardTypeRequest はボード作成・更新リクエストのタグ入力。
type boardTypeRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// createBoardRequest はボード作成リクエストのボディ。
type createBoardRequest struct {
	Name  string             `json:"name"`
	Types []boardTypeRequest `json:"types"`
}

// updateBoardRequest はボード更新リクエストのボディ。
// nilのフィールドは変更しない。Typesに空配列を渡すと全タグを削除する。
type updateBoardRequest struct {
	Name  *string             `json:"name"`
	Types *[]boardTypeRequest `json:"types"`
}

// ListBoards はユーザーのボード一覧を取得する。
// GET /api/boards
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards := h.service.ListBoards(r.Context())

	results := make([]boardResponse, len(boards))
	for i, b := range boards {
		results[i] = toBoardResponse(b)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// CreateBoard は新しいボードを作成する。
// POST /api/boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	created, err := h.service.CreateBoard(r.Context(), req.Name, toBoardTypeInputs(req.Types))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := toBoardResponse(created)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// GetBoard はボードを1件取得する。
// GET /api/boards/:id
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "id")

	b, err := h.service.GetBoardByID(r.Context(), boardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if b == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewBoardNotFoundError(boardID))
		return
	}

	resp := toBoardResponse(b)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UpdateBoard はボードの名前・タグ列を部分更新する。
// PATCH /api/boards/:id
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "id")

	var req updateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	input := board.UpdateInput{Name: req.Name}
	if req.Types != nil {
		types := toBoardTypeInputs(*req.Types)
		input.Types = &types
	}

	updated, err := h.service.UpdateBoard(r.Context(), boardID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := toBoardResponse(updated)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// DeleteBoard はボードを削除する。所属タグはCASCADE削除される。
// DELETE /api/boards/:id
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "id")

	if err := h.service.DeleteBoard(r.Context(), boardID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearAllBoards はユーザーの全ボードを一括削除する。
// DELETE /api/boards
func (h *BoardHandler) ClearAllBoards(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAllBoards(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toBoardResponse はmodel.BoardからAPIレスポンスに変換する。
func toBoardResponse(b *model.Board) boardResponse {
	types := make([]boardTypeResponse, len(b.Types))
	for i, t := range b.Types {
		types[i] = boardTypeResponse{
			Name:         t.Name,
			Color:        t.Color,
			DisplayOrder: t.DisplayOrder,
		}
	}
	return boardResponse{
		ID:        b.ID,
		Name:      b.Name,
		Types:     types,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// toBoardTypeInputs はリクエストのタグ列をドメイン入力形に変換する。
func toBoardTypeInputs(reqs []boardTypeRequest) []model.BoardTypeInput {
	inputs := make([]model.BoardTypeInput, len(reqs))
	for i, t := range reqs {
		inputs[i] = model.BoardTypeInput{Name: t.Name, Color: t.Color}
	}
	return inputs
}

// apiErrorResponse は統一エラーフォーマットのレスポンスボディ。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequestError はリクエストボディ解析失敗時の400レスポンスを書き込む。
func writeInvalidRequestError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case model.ErrCodeBoardNotFound, model.ErrCodePodcastNotFound,
		model.ErrCodeEpisodeNotInHistory, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmptyBoardName, model.ErrCodeInvalidProgress,
		model.ErrCodeInvalidPreferences, model.ErrCodeInvalidFeedURL:
		return http.StatusBadRequest
	case model.ErrCodeCatalogUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
