package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/castboard/internal/model"
)

// FeedGuard はフィードURLのSSRF検証インターフェース。
type FeedGuard interface {
	ValidateFeedURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// ShowNotesSanitizer はショーノートHTMLのサニタイズインターフェース。
type ShowNotesSanitizer interface {
	Sanitize(rawHTML string) string
}

// FeedEnricher は番組のRSSフィードから直接エピソードを取得する。
// カタログAPIのメタデータにエピソード詳細が欠けている場合の補完経路で、
// フィードURLはSSRF検証を通し、ショーノートはサニタイズしてから返す。
type FeedEnricher struct {
	guard       FeedGuard
	sanitizer   ShowNotesSanitizer
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewFeedEnricher はFeedEnricherの新しいインスタンスを生成する。
func NewFeedEnricher(guard FeedGuard, sanitizer ShowNotesSanitizer, logger *slog.Logger, timeout time.Duration, maxBodySize int64) *FeedEnricher {
	return &FeedEnricher{
		guard:       guard,
		sanitizer:   sanitizer,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// FeedEpisodes は番組のRSSフィードを取得・パースしてエピソード列を返す。
// 公開日時の新しい順。不正なフィードURLはINVALID_FEED_URLで失敗する。
func (e *FeedEnricher) FeedEpisodes(ctx context.Context, podcastID, feedURL string) ([]model.Episode, error) {
	if err := e.guard.ValidateFeedURL(feedURL); err != nil {
		return nil, model.NewInvalidFeedURLError(err.Error())
	}

	client := e.guard.NewSafeClient(e.timeout, e.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "Castboard/1.0 Podcast Notes")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		e.logger.Error("フィードの取得に失敗しました",
			slog.String("podcast_id", podcastID),
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewCatalogUnavailableError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("フィードがエラーステータスを返しました",
			slog.String("podcast_id", podcastID),
			slog.String("feed_url", feedURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewCatalogUnavailableError()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		e.logger.Error("フィードのパースに失敗しました",
			slog.String("podcast_id", podcastID),
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	episodes := make([]model.Episode, 0, len(parsedFeed.Items))
	for _, item := range parsedFeed.Items {
		ep := model.Episode{
			ID:        item.GUID,
			PodcastID: podcastID,
			Title:     item.Title,
		}
		if ep.ID == "" {
			ep.ID = item.Link
		}

		// ショーノートはサニタイズしてから返す
		desc := item.Description
		if item.Content != "" {
			desc = item.Content
		}
		ep.Description = e.sanitizer.Sanitize(desc)

		if item.PublishedParsed != nil {
			ep.PublishedAt = *item.PublishedParsed
		}
		if item.Image != nil {
			ep.Image = item.Image.URL
		}
		// 音声ファイルはenclosureから取る
		for _, enc := range item.Enclosures {
			if enc.URL != "" {
				ep.AudioURL = enc.URL
				break
			}
		}

		episodes = append(episodes, ep)
	}

	return episodes, nil
}
