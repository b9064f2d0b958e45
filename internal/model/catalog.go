// Package model はドメインモデルを定義する。
package model

import "time"

// Podcast は外部カタログサービスから取得した番組メタデータを表す。
// 読み取り専用で、このレイヤーが書き戻すことはない。
type Podcast struct {
	ID            string
	Title         string
	Publisher     string
	Description   string
	Image         string
	FeedURL       string
	ListenScore   int
	TotalEpisodes int
	GenreIDs      []int
}

// Episode は番組内の1エピソードのメタデータを表す。
type Episode struct {
	ID          string
	PodcastID   string
	Title       string
	Description string
	AudioURL    string
	AudioLength int // 秒
	Image       string
	PublishedAt time.Time
}
