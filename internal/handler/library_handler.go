package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/castboard/internal/model"
)

// LibraryServiceInterface はライブラリハンドラーが必要とするサービスインターフェース。
// フォロー・保存・再生履歴・再生設定の4コレクションを扱う。
type LibraryServiceInterface interface {
	ListFollowed(ctx context.Context) ([]model.FollowedPodcast, error)
	Follow(ctx context.Context, p model.FollowedPodcast) error
	Unfollow(ctx context.Context, podcastID string) error
	// IsFollowing はフェイルセーフな読み取り。未認証・取得失敗時はfalseを返す。
	IsFollowing(ctx context.Context, podcastID string) bool

	ListSaved(ctx context.Context, boardID *string) ([]model.SavedPodcast, error)
	Save(ctx context.Context, entry model.SavedPodcast) error
	Unsave(ctx context.Context, podcastID string, episodeID *string) error
	IsSaved(ctx context.Context, podcastID string, episodeID *string) bool

	ListHistory(ctx context.Context, limit int) ([]model.ListeningHistoryEntry, error)
	RecordPlay(ctx context.Context, entry model.ListeningHistoryEntry) error
	UpdateProgress(ctx context.Context, episodeID string, progress float64) error
	ClearHistory(ctx context.Context) error

	// GetPreferences は常に成功する読み取り。保存行がなければデフォルト値を返す。
	GetPreferences(ctx context.Context) model.Preferences
	UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) error
}

// LibraryHandler はユーザーコレクションのHTTPハンドラー。
type LibraryHandler struct {
	service LibraryServiceInterface
}

// NewLibraryHandler はLibraryHandlerを生成する。
func NewLibraryHandler(service LibraryServiceInterface) *LibraryHandler {
	return &LibraryHandler{
		service: service,
	}
}

// --- レスポンス・リクエスト型 ---

type followedPodcastResponse struct {
	PodcastID  string    `json:"podcast_id"`
	Title      string    `json:"title"`
	Publisher  string    `json:"publisher"`
	Image      string    `json:"image"`
	FollowedAt time.Time `json:"followed_at"`
}

type followRequest struct {
	PodcastID string `json:"podcast_id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Image     string `json:"image"`
}

type savedPodcastResponse struct {
	PodcastID string    `json:"podcast_id"`
	EpisodeID *string   `json:"episode_id,omitempty"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	BoardID   *string   `json:"board_id,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

type saveRequest struct {
	PodcastID string  `json:"podcast_id"`
	EpisodeID *string `json:"episode_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	BoardID   *string `json:"board_id"`
}

type historyEntryResponse struct {
	EpisodeID    string    `json:"episode_id"`
	PodcastID    string    `json:"podcast_id"`
	Title        string    `json:"title"`
	Image        string    `json:"image"`
	Progress     float64   `json:"progress"`
	Duration     int       `json:"duration"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

type recordPlayRequest struct {
	EpisodeID string  `json:"episode_id"`
	PodcastID string  `json:"podcast_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Progress  float64 `json:"progress"`
	Duration  int     `json:"duration"`
}

type updateProgressRequest struct {
	Progress float64 `json:"progress"`
}

type preferencesResponse struct {
	AutoPlay        bool    `json:"auto_play"`
	PlaybackSpeed   float64 `json:"playback_speed"`
	DownloadQuality string  `json:"download_quality"`
}

type updatePreferencesRequest struct {
	AutoPlay        *bool    `json:"auto_play"`
	PlaybackSpeed   *float64 `json:"playback_speed"`
	DownloadQuality *string  `json:"download_quality"`
}

// --- フォロー ---

// ListFollowed はフォロー中のポッドキャスト一覧を取得する。
// GET /api/library/followed
func (h *LibraryHandler) ListFollowed(w http.ResponseWriter, r *http.Request) {
	followed, err := h.service.ListFollowed(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]followedPodcastResponse, len(followed))
	for i, f := range followed {
		results[i] = followedPodcastResponse{
			PodcastID:  f.PodcastID,
			Title:      f.Title,
			Publisher:  f.Publisher,
			Image:      f.Image,
			FollowedAt: f.FollowedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Follow はポッドキャストをフォローする。既にフォロー済みの場合も成功を返す（冪等）。
// POST /api/library/followed
func (h *LibraryHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	err := h.service.Follow(r.Context(), model.FollowedPodcast{
		PodcastID: req.PodcastID,
		Title:     req.Title,
		Publisher: req.Publisher,
		Image:     req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow はポッドキャストのフォローを解除する。
// DELETE /api/library/followed/:podcastID
func (h *LibraryHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "podcastID")

	if err := h.service.Unfollow(r.Context(), podcastID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IsFollowing はフォロー状態を返す。
// GET /api/library/followed/:podcastID
func (h *LibraryHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "podcastID")

	following := h.service.IsFollowing(r.Context(), podcastID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"following": following})
}

// --- 保存 ---

// ListSaved は保存済みポッドキャスト・エピソード一覧を取得する。
// GET /api/library/saved?board_id=xxx
func (h *LibraryHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	var boardID *string
	if v := r.URL.Query().Get("board_id"); v != "" {
		boardID = &v
	}

	saved, err := h.service.ListSaved(r.Context(), boardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]savedPodcastResponse, len(saved))
	for i, s := range saved {
		results[i] = savedPodcastResponse{
			PodcastID: s.PodcastID,
			EpisodeID: s.EpisodeID,
			Title:     s.Title,
			Image:     s.Image,
			BoardID:   s.BoardID,
			SavedAt:   s.SavedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Save はポッドキャストまたはエピソードを保存する。既存エントリはUPSERTされる（冪等）。
// POST /api/library/saved
func (h *LibraryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	err := h.service.Save(r.Context(), model.SavedPodcast{
		PodcastID: req.PodcastID,
		EpisodeID: req.EpisodeID,
		Title:     req.Title,
		Image:     req.Image,
		BoardID:   req.BoardID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unsave は保存を解除する。episode_idを省略すると番組に属する全エントリを削除する。
// DELETE /api/library/saved/:podcastID?episode_id=xxx
func (h *LibraryHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "podcastID")

	var episodeID *string
	if v := r.URL.Query().Get("episode_id"); v != "" {
		episodeID = &v
	}

	if err := h.service.Unsave(r.Context(), podcastID, episodeID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IsSaved は保存状態を返す。
// GET /api/library/saved/:podcastID?episode_id=xxx
func (h *LibraryHandler) IsSaved(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "podcastID")

	var episodeID *string
	if v := r.URL.Query().Get("episode_id"); v != "" {
		episodeID = &v
	}

	saved := h.service.IsSaved(r.Context(), podcastID, episodeID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"saved": saved})
}

// --- 再生履歴 ---

// ListHistory は再生履歴を新しい順に取得する。
// GET /api/library/history?limit=10
func (h *LibraryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeInvalidRequestError(w)
			return
		}
		limit = parsed
	}

	entries, err := h.service.ListHistory(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]historyEntryResponse, len(entries))
	for i, e := range entries {
		results[i] = toHistoryEntryResponse(e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// RecordPlay はエピソードの再生を記録する。既存エントリはUPSERTされる。
// POST /api/library/history
func (h *LibraryHandler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	var req recordPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	err := h.service.RecordPlay(r.Context(), model.ListeningHistoryEntry{
		EpisodeID: req.EpisodeID,
		PodcastID: req.PodcastID,
		Title:     req.Title,
		Image:     req.Image,
		Progress:  req.Progress,
		Duration:  req.Duration,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateProgress は履歴エントリの再生進捗を更新する。
// 履歴に存在しないエピソードの進捗更新は404を返す（暗黙的に作成しない）。
// PATCH /api/library/history/:episodeID
func (h *LibraryHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	if err := h.service.UpdateProgress(r.Context(), episodeID, req.Progress); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory は再生履歴を全削除する。
// DELETE /api/library/history
func (h *LibraryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearHistory(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 再生設定 ---

// GetPreferences は再生設定を取得する。常に200を返す。
// GET /api/library/preferences
func (h *LibraryHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs := h.service.GetPreferences(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(preferencesResponse{
		AutoPlay:        prefs.AutoPlay,
		PlaybackSpeed:   prefs.PlaybackSpeed,
		DownloadQuality: string(prefs.DownloadQuality),
	})
}

// UpdatePreferences は再生設定を部分更新する。
// PUT /api/library/preferences
func (h *LibraryHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	patch := model.PreferencesPatch{
		AutoPlay:      req.AutoPlay,
		PlaybackSpeed: req.PlaybackSpeed,
	}
	if req.DownloadQuality != nil {
		q := model.DownloadQuality(*req.DownloadQuality)
		patch.DownloadQuality = &q
	}

	if err := h.service.UpdatePreferences(r.Context(), patch); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toHistoryEntryResponse はmodel.ListeningHistoryEntryからAPIレスポンスに変換する。
func toHistoryEntryResponse(e model.ListeningHistoryEntry) historyEntryResponse {
	return historyEntryResponse{
		EpisodeID:    e.EpisodeID,
		PodcastID:    e.PodcastID,
		Title:        e.Title,
		Image:        e.Image,
		Progress:     e.Progress,
		Duration:     e.Duration,
		LastPlayedAt: e.LastPlayedAt,
	}
}
