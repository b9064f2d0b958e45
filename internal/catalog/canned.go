package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/castboard/internal/model"
)

// Canned は開発・デモ用の固定データセット。APIキーなしで動作確認するための
// Providerの実装で、ライブAPIとの切り替えはハンドラー層の設定フラグで行う。
// サービス層・リポジトリ層はこのフラグを参照しない。
type Canned struct {
	podcasts []model.Podcast
	episodes map[string][]model.Episode
}

// NewCanned は固定データセットを生成する。
func NewCanned() *Canned {
	now := time.Now()
	return &Canned{
		podcasts: []model.Podcast{
			{
				ID:            "canned-biz-1",
				Title:         "The Tim Ferriss Show",
				Publisher:     "Tim Ferriss",
				Description:   "Deconstructing world-class performers to find the tools and tactics you can use.",
				Image:         "https://placehold.co/150x150?text=TIM+F",
				ListenScore:   94,
				TotalEpisodes: 600,
				GenreIDs:      []int{93},
			},
			{
				ID:            "canned-biz-2",
				Title:         "How I Built This",
				Publisher:     "NPR",
				Description:   "Stories behind some of the world's best known companies.",
				Image:         "https://placehold.co/150x150?text=HIBT",
				ListenScore:   91,
				TotalEpisodes: 400,
				GenreIDs:      []int{93, 111},
			},
			{
				ID:            "canned-biz-3",
				Title:         "Masters of Scale",
				Publisher:     "WaitWhat",
				Description:   "How companies grow from zero to a gazillion.",
				Image:         "https://placehold.co/150x150?text=SCALE",
				ListenScore:   89,
				TotalEpisodes: 200,
				GenreIDs:      []int{93},
			},
			{
				ID:            "canned-health-1",
				Title:         "The Peter Attia Drive",
				Publisher:     "Peter Attia MD",
				Description:   "A deep dive into longevity, performance, and optimal health.",
				Image:         "https://placehold.co/150x150?text=ATTIA",
				ListenScore:   93,
				TotalEpisodes: 250,
				GenreIDs:      []int{122},
			},
			{
				ID:            "canned-health-2",
				Title:         "The Model Health Show",
				Publisher:     "Shawn Stevenson",
				Description:   "Taking your health to the next level with practical tips.",
				Image:         "https://placehold.co/150x150?text=MODEL",
				ListenScore:   90,
				TotalEpisodes: 500,
				GenreIDs:      []int{122},
			},
			{
				ID:            "canned-sci-1",
				Title:         "Huberman Lab",
				Publisher:     "Andrew Huberman",
				Description:   "Science and health podcast.",
				Image:         "https://placehold.co/150x150?text=HUBERMAN",
				ListenScore:   95,
				TotalEpisodes: 200,
				GenreIDs:      []int{107},
			},
		},
		episodes: map[string][]model.Episode{
			"canned-biz-1": {
				{
					ID:          "canned-ep-1",
					PodcastID:   "canned-biz-1",
					Title:       "Gap Gain Episode",
					Description: "Canned episode description.",
					AudioLength: 3600,
					Image:       "https://placehold.co/150x150?text=EP1",
					PublishedAt: now.Add(-24 * time.Hour),
				},
				{
					ID:          "canned-ep-2",
					PodcastID:   "canned-biz-1",
					Title:       "The Complete Show",
					Description: "Another canned episode.",
					AudioLength: 2400,
					Image:       "https://placehold.co/150x150?text=EP2",
					PublishedAt: now.Add(-48 * time.Hour),
				},
			},
		},
	}
}

// SearchPodcasts はタイトル・配信者の部分一致で検索する。
func (c *Canned) SearchPodcasts(ctx context.Context, query string, offset int) ([]model.Podcast, error) {
	q := strings.ToLower(query)
	var results []model.Podcast
	for _, p := range c.podcasts {
		if q == "" || strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Publisher), q) {
			results = append(results, p)
		}
	}
	if offset >= len(results) {
		return []model.Podcast{}, nil
	}
	return results[offset:], nil
}

// SearchEpisodes はエピソードタイトルの部分一致で検索する。
func (c *Canned) SearchEpisodes(ctx context.Context, query string, offset int) ([]model.Episode, error) {
	q := strings.ToLower(query)
	var results []model.Episode
	for _, eps := range c.episodes {
		for _, e := range eps {
			if q == "" || strings.Contains(strings.ToLower(e.Title), q) {
				results = append(results, e)
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].PublishedAt.After(results[j].PublishedAt)
	})
	if offset >= len(results) {
		return []model.Episode{}, nil
	}
	return results[offset:], nil
}

// GetPodcastByID は番組を返す。存在しない場合はPODCAST_NOT_FOUNDを返す。
func (c *Canned) GetPodcastByID(ctx context.Context, id string) (*model.Podcast, error) {
	for _, p := range c.podcasts {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, model.NewPodcastNotFoundError(id)
}

// GetPodcastEpisodes は番組のエピソードを新しい順で返す。
func (c *Canned) GetPodcastEpisodes(ctx context.Context, podcastID string) ([]model.Episode, error) {
	if _, err := c.GetPodcastByID(ctx, podcastID); err != nil {
		return nil, err
	}
	eps := append([]model.Episode{}, c.episodes[podcastID]...)
	sort.Slice(eps, func(i, j int) bool {
		return eps[i].PublishedAt.After(eps[j].PublishedAt)
	})
	return eps, nil
}

// BestPodcasts はListenScoreの高い順で返す。genreIDが0の場合は全ジャンル。
func (c *Canned) BestPodcasts(ctx context.Context, genreID int) ([]model.Podcast, error) {
	var results []model.Podcast
	for _, p := range c.podcasts {
		if genreID == 0 {
			results = append(results, p)
			continue
		}
		for _, g := range p.GenreIDs {
			if g == genreID {
				results = append(results, p)
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ListenScore > results[j].ListenScore
	})
	if results == nil {
		results = []model.Podcast{}
	}
	return results, nil
}

// compile-time interface check
var _ Provider = (*Canned)(nil)
