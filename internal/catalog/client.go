// Package catalog は外部ポッドキャストカタログAPIとの連携を提供する。
// Listen NotesスタイルのHTTP APIの呼び出しと、開発用の固定データセットを含む。
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/castboard/internal/metrics"
	"github.com/hitoshi/castboard/internal/model"
)

// defaultBaseURL はListen Notes API v2のベースURL。
const defaultBaseURL = "https://listen-api.listennotes.com/api/v2"

// Provider はポッドキャストカタログの読み取りインターフェース。
// ライブAPIクライアントと固定データセットの両方が実装する。
type Provider interface {
	SearchPodcasts(ctx context.Context, query string, offset int) ([]model.Podcast, error)
	SearchEpisodes(ctx context.Context, query string, offset int) ([]model.Episode, error)
	GetPodcastByID(ctx context.Context, id string) (*model.Podcast, error)
	GetPodcastEpisodes(ctx context.Context, podcastID string) ([]model.Episode, error)
	// BestPodcasts は人気番組のキュレーションリストを返す。genreIDが0の場合は全ジャンル。
	BestPodcasts(ctx context.Context, genreID int) ([]model.Podcast, error)
}

// Client はカタログAPIのHTTPクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector
	baseURL    string // テスト用に差し替え可能
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLが空の場合はListen Notesの本番URLを使う。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// --- ワイヤ形式 ---
// フィールド名はListen Notes API v2のレスポンスに従う。

type podcastJSON struct {
	ID            string `json:"id"`
	TitleOriginal string `json:"title_original"`
	DescOriginal  string `json:"description_original"`
	PubOriginal   string `json:"publisher_original"`
	Image         string `json:"image"`
	ListenScore   int    `json:"listen_score"`
	GenreIDs      []int  `json:"genre_ids"`
	TotalEpisodes int    `json:"total_episodes"`
	RSS           string `json:"rss"`
}

type episodePodcastJSON struct {
	ID string `json:"id"`
}

type episodeJSON struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	TitleOriginal  string             `json:"title_original"`
	DescOriginal   string             `json:"description_original"`
	PubDateMs      int64              `json:"pub_date_ms"`
	Audio          string             `json:"audio"`
	AudioLengthSec int                `json:"audio_length_sec"`
	Image          string             `json:"image"`
	Podcast        episodePodcastJSON `json:"podcast"`
}

type podcastSearchResponseJSON struct {
	Results []podcastJSON `json:"results"`
}

type episodeSearchResponseJSON struct {
	Results []episodeJSON `json:"results"`
}

type podcastDetailJSON struct {
	podcastJSON
	Episodes []episodeJSON `json:"episodes"`
}

type bestPodcastsResponseJSON struct {
	Podcasts []podcastJSON `json:"podcasts"`
}

func (p podcastJSON) toModel() model.Podcast {
	return model.Podcast{
		ID:            p.ID,
		Title:         p.TitleOriginal,
		Publisher:     p.PubOriginal,
		Description:   p.DescOriginal,
		Image:         p.Image,
		FeedURL:       p.RSS,
		ListenScore:   p.ListenScore,
		TotalEpisodes: p.TotalEpisodes,
		GenreIDs:      p.GenreIDs,
	}
}

func (e episodeJSON) toModel(podcastID string) model.Episode {
	title := e.Title
	if title == "" {
		title = e.TitleOriginal
	}
	if podcastID == "" {
		podcastID = e.Podcast.ID
	}
	return model.Episode{
		ID:          e.ID,
		PodcastID:   podcastID,
		Title:       title,
		Description: e.DescOriginal,
		AudioURL:    e.Audio,
		AudioLength: e.AudioLengthSec,
		Image:       e.Image,
		PublishedAt: time.UnixMilli(e.PubDateMs),
	}
}

// makeRequest はAPIキー付きのGETリクエストを実行し、ボディを返す。
// 404はnotFound=trueで区別して返す（番組未検出の判定に使う）。
func (c *Client) makeRequest(ctx context.Context, endpoint string, params url.Values) (body []byte, notFound bool, err error) {
	reqURL, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, false, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	if params != nil {
		reqURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("X-ListenAPI-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.collector.RecordCatalogLatency(time.Since(start))
	if err != nil {
		c.collector.RecordCatalogFailure(endpoint)
		c.logger.Error("カタログAPIの呼び出しに失敗しました",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.collector.RecordCatalogFailure(endpoint)
		c.logger.Error("カタログAPIがエラーステータスを返しました",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, false, fmt.Errorf("カタログAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.collector.RecordCatalogFailure(endpoint)
		return nil, false, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	return body, false, nil
}

// SearchPodcasts は番組を検索する。
func (c *Client) SearchPodcasts(ctx context.Context, query string, offset int) ([]model.Podcast, error) {
	params := url.Values{
		"q":            {query},
		"type":         {"podcast"},
		"offset":       {strconv.Itoa(offset)},
		"sort_by_date": {"0"},
	}
	body, _, err := c.makeRequest(ctx, "/search", params)
	if err != nil {
		return nil, model.NewCatalogUnavailableError()
	}

	var result podcastSearchResponseJSON
	if err := json.Unmarshal(body, &result); err != nil {
		c.collector.RecordCatalogFailure("/search")
		return nil, fmt.Errorf("検索レスポンスのパースに失敗しました: %w", err)
	}

	podcasts := make([]model.Podcast, len(result.Results))
	for i, p := range result.Results {
		podcasts[i] = p.toModel()
	}
	return podcasts, nil
}

// SearchEpisodes はエピソードを検索する。10分未満のエピソードは除外される。
func (c *Client) SearchEpisodes(ctx context.Context, query string, offset int) ([]model.Episode, error) {
	params := url.Values{
		"q":            {query},
		"type":         {"episode"},
		"offset":       {strconv.Itoa(offset)},
		"len_min":      {"10"},
		"sort_by_date": {"0"},
	}
	body, _, err := c.makeRequest(ctx, "/search", params)
	if err != nil {
		return nil, model.NewCatalogUnavailableError()
	}

	var result episodeSearchResponseJSON
	if err := json.Unmarshal(body, &result); err != nil {
		c.collector.RecordCatalogFailure("/search")
		return nil, fmt.Errorf("検索レスポンスのパースに失敗しました: %w", err)
	}

	episodes := make([]model.Episode, len(result.Results))
	for i, e := range result.Results {
		episodes[i] = e.toModel("")
	}
	return episodes, nil
}

// GetPodcastByID は番組の詳細を取得する。存在しない場合はPODCAST_NOT_FOUNDを返す。
func (c *Client) GetPodcastByID(ctx context.Context, id string) (*model.Podcast, error) {
	body, notFound, err := c.makeRequest(ctx, "/podcasts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, model.NewCatalogUnavailableError()
	}
	if notFound {
		return nil, model.NewPodcastNotFoundError(id)
	}

	var detail podcastDetailJSON
	if err := json.Unmarshal(body, &detail); err != nil {
		c.collector.RecordCatalogFailure("/podcasts")
		return nil, fmt.Errorf("番組レスポンスのパースに失敗しました: %w", err)
	}

	p := detail.toModel()
	return &p, nil
}

// GetPodcastEpisodes は番組の最新エピソードを新しい順で取得する。
func (c *Client) GetPodcastEpisodes(ctx context.Context, podcastID string) ([]model.Episode, error) {
	params := url.Values{"sort": {"recent_first"}}
	body, notFound, err := c.makeRequest(ctx, "/podcasts/"+url.PathEscape(podcastID), params)
	if err != nil {
		return nil, model.NewCatalogUnavailableError()
	}
	if notFound {
		return nil, model.NewPodcastNotFoundError(podcastID)
	}

	var detail podcastDetailJSON
	if err := json.Unmarshal(body, &detail); err != nil {
		c.collector.RecordCatalogFailure("/podcasts")
		return nil, fmt.Errorf("番組レスポンスのパースに失敗しました: %w", err)
	}

	episodes := make([]model.Episode, len(detail.Episodes))
	for i, e := range detail.Episodes {
		episodes[i] = e.toModel(podcastID)
	}
	return episodes, nil
}

// BestPodcasts は人気番組のキュレーションリストを取得する。
// genreIDが0の場合は全ジャンルを対象にする。
func (c *Client) BestPodcasts(ctx context.Context, genreID int) ([]model.Podcast, error) {
	params := url.Values{
		"region": {"us"},
		"sort":   {"listen_score"},
	}
	if genreID > 0 {
		params.Set("genre_id", strconv.Itoa(genreID))
	}
	body, _, err := c.makeRequest(ctx, "/best_podcasts", params)
	if err != nil {
		return nil, model.NewCatalogUnavailableError()
	}

	var result bestPodcastsResponseJSON
	if err := json.Unmarshal(body, &result); err != nil {
		c.collector.RecordCatalogFailure("/best_podcasts")
		return nil, fmt.Errorf("人気番組レスポンスのパースに失敗しました: %w", err)
	}

	podcasts := make([]model.Podcast, len(result.Podcasts))
	for i, p := range result.Podcasts {
		podcasts[i] = p.toModel()
	}
	return podcasts, nil
}

// compile-time interface check
var _ Provider = (*Client)(nil)
