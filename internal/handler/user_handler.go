package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/castboard/internal/auth"
	"github.com/hitoshi/castboard/internal/model"
)

// UserDataServiceInterface はユーザーデータハンドラーが必要とするサービスインターフェース。
type UserDataServiceInterface interface {
	// GetAllUserData は全コレクションのスナップショットを取得する。
	// いずれかのコレクションの取得失敗は全体の失敗として扱う。
	GetAllUserData(ctx context.Context, ownerID string) (*model.UserData, error)
	// ClearAllUserData はフォロー・保存・履歴を全削除する。
	// 再生設定の行は削除せず残す。
	ClearAllUserData(ctx context.Context) error
}

// UserDataHandler はユーザーデータ一括操作のHTTPハンドラー。
type UserDataHandler struct {
	service UserDataServiceInterface
}

// NewUserDataHandler はUserDataHandlerを生成する。
func NewUserDataHandler(service UserDataServiceInterface) *UserDataHandler {
	return &UserDataHandler{
		service: service,
	}
}

// userDataResponse はユーザー全データのAPIレスポンス。
type userDataResponse struct {
	UserID           string                    `json:"user_id"`
	FollowedPodcasts []followedPodcastResponse `json:"followed_podcasts"`
	SavedPodcasts    []savedPodcastResponse    `json:"saved_podcasts"`
	ListeningHistory []historyEntryResponse    `json:"listening_history"`
	Preferences      preferencesResponse       `json:"preferences"`
	ExportedAt       time.Time                 `json:"exported_at"`
}

// GetAllData はユーザーの全コレクションをエクスポートする。
// GET /api/me/data
func (h *UserDataHandler) GetAllData(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthRequiredError())
		return
	}

	data, err := h.service.GetAllUserData(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := userDataResponse{
		UserID:           data.UserID,
		FollowedPodcasts: make([]followedPodcastResponse, len(data.FollowedPodcasts)),
		SavedPodcasts:    make([]savedPodcastResponse, len(data.SavedPodcasts)),
		ListeningHistory: make([]historyEntryResponse, len(data.ListeningHistory)),
		Preferences: preferencesResponse{
			AutoPlay:        data.Preferences.AutoPlay,
			PlaybackSpeed:   data.Preferences.PlaybackSpeed,
			DownloadQuality: string(data.Preferences.DownloadQuality),
		},
		ExportedAt: time.Now().UTC(),
	}
	for i, f := range data.FollowedPodcasts {
		resp.FollowedPodcasts[i] = followedPodcastResponse{
			PodcastID:  f.PodcastID,
			Title:      f.Title,
			Publisher:  f.Publisher,
			Image:      f.Image,
			FollowedAt: f.FollowedAt,
		}
	}
	for i, s := range data.SavedPodcasts {
		resp.SavedPodcasts[i] = savedPodcastResponse{
			PodcastID: s.PodcastID,
			EpisodeID: s.EpisodeID,
			Title:     s.Title,
			Image:     s.Image,
			BoardID:   s.BoardID,
			SavedAt:   s.SavedAt,
		}
	}
	for i, e := range data.ListeningHistory {
		resp.ListeningHistory[i] = toHistoryEntryResponse(e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ClearAllData はユーザーのコレクションデータを全削除する。
// 再生設定はサインアップ時に作成された行を保持する。
// DELETE /api/me/data
func (h *UserDataHandler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAllUserData(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
