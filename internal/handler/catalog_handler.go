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

// CatalogProviderInterface はカタログハンドラーが必要とするプロバイダーインターフェース。
// 実装はListen Notes APIクライアントまたは開発用の固定カタログ。
type CatalogProviderInterface interface {
	SearchPodcasts(ctx context.Context, query string, offset int) ([]model.Podcast, error)
	SearchEpisodes(ctx context.Context, query string, offset int) ([]model.Episode, error)
	GetPodcastByID(ctx context.Context, id string) (*model.Podcast, error)
	GetPodcastEpisodes(ctx context.Context, podcastID string) ([]model.Episode, error)
	// BestPodcasts は人気番組を返す。genreID 0は全ジャンル。
	BestPodcasts(ctx context.Context, genreID int) ([]model.Podcast, error)
}

// ShowNotesEnricherInterface はRSSフィードからショーノート付きエピソードを取得する。
type ShowNotesEnricherInterface interface {
	FeedEpisodes(ctx context.Context, podcastID, feedURL string) ([]model.Episode, error)
}

// CatalogHandler は外部カタログ検索のHTTPハンドラー。
type CatalogHandler struct {
	provider CatalogProviderInterface
	enricher ShowNotesEnricherInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。enricherはnilでもよい（ショーノート取得無効）。
func NewCatalogHandler(provider CatalogProviderInterface, enricher ShowNotesEnricherInterface) *CatalogHandler {
	return &CatalogHandler{
		provider: provider,
		enricher: enricher,
	}
}

// podcastResponse は番組メタデータのAPIレスポンス。
type podcastResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	ListenScore   int    `json:"listen_score"`
	TotalEpisodes int    `json:"total_episodes"`
	GenreIDs      []int  `json:"genre_ids"`
}

// episodeResponse はエピソードメタデータのAPIレスポンス。
type episodeResponse struct {
	ID          string    `json:"id"`
	PodcastID   string    `json:"podcast_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AudioURL    string    `json:"audio_url"`
	AudioLength int       `json:"audio_length"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"published_at"`
}

// Search は番組またはエピソードを検索する。
// GET /api/catalog/search?q=xxx&type=podcast|episode&offset=0
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeInvalidRequestError(w)
		return
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeInvalidRequestError(w)
			return
		}
		offset = parsed
	}

	searchType := r.URL.Query().Get("type")
	if searchType == "" {
		searchType = "podcast"
	}

	w.Header().Set("Content-Type", "application/json")

	switch searchType {
	case "podcast":
		podcasts, err := h.provider.SearchPodcasts(r.Context(), query, offset)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		json.NewEncoder(w).Encode(toPodcastResponses(podcasts))
	case "episode":
		episodes, err := h.provider.SearchEpisodes(r.Context(), query, offset)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		json.NewEncoder(w).Encode(toEpisodeResponses(episodes))
	default:
		writeInvalidRequestError(w)
	}
}

// GetPodcast は番組詳細を取得する。
// GET /api/catalog/podcasts/:id
func (h *CatalogHandler) GetPodcast(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "id")

	podcast, err := h.provider.GetPodcastByID(r.Context(), podcastID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if podcast == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPodcastNotFoundError(podcastID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPodcastResponse(*podcast))
}

// GetPodcastEpisodes は番組のエピソード一覧を取得する。
// GET /api/catalog/podcasts/:id/episodes
func (h *CatalogHandler) GetPodcastEpisodes(w http.ResponseWriter, r *http.Request) {
	podcastID := chi.URLParam(r, "id")

	episodes, err := h.provider.GetPodcastEpisodes(r.Context(), podcastID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEpisodeResponses(episodes))
}

// GetShowNotes は番組のRSSフィードからサニタイズ済みショーノート付き
// エピソード一覧を取得する。
// GET /api/catalog/podcasts/:id/shownotes
func (h *CatalogHandler) GetShowNotes(w http.ResponseWriter, r *http.Request) {
	if h.enricher == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPodcastNotFoundError(chi.URLParam(r, "id")))
		return
	}

	podcastID := chi.URLParam(r, "id")

	podcast, err := h.provider.GetPodcastByID(r.Context(), podcastID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if podcast == nil || podcast.FeedURL == "" {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPodcastNotFoundError(podcastID))
		return
	}

	episodes, err := h.enricher.FeedEpisodes(r.Context(), podcastID, podcast.FeedURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEpisodeResponses(episodes))
}

// BestPodcasts は人気番組一覧を取得する。
// GET /api/catalog/best?genre_id=93
func (h *CatalogHandler) BestPodcasts(w http.ResponseWriter, r *http.Request) {
	genreID := 0
	if v := r.URL.Query().Get("genre_id"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeInvalidRequestError(w)
			return
		}
		genreID = parsed
	}

	podcasts, err := h.provider.BestPodcasts(r.Context(), genreID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPodcastResponses(podcasts))
}

// --- ヘルパー関数 ---

func toPodcastResponse(p model.Podcast) podcastResponse {
	return podcastResponse{
		ID:            p.ID,
		Title:         p.Title,
		Publisher:     p.Publisher,
		Description:   p.Description,
		Image:         p.Image,
		ListenScore:   p.ListenScore,
		TotalEpisodes: p.TotalEpisodes,
		GenreIDs:      p.GenreIDs,
	}
}

func toPodcastResponses(podcasts []model.Podcast) []podcastResponse {
	results := make([]podcastResponse, len(podcasts))
	for i, p := range podcasts {
		results[i] = toPodcastResponse(p)
	}
	return results
}

func toEpisodeResponses(episodes []model.Episode) []episodeResponse {
	results := make([]episodeResponse, len(episodes))
	for i, e := range episodes {
		results[i] = episodeResponse{
			ID:          e.ID,
			PodcastID:   e.PodcastID,
			Title:       e.Title,
			Description: e.Description,
			AudioURL:    e.AudioURL,
			AudioLength: e.AudioLength,
			Image:       e.Image,
			PublishedAt: e.PublishedAt,
		}
	}
	return results
}
