// Package model はドメインモデルを定義する。
package model

import "time"

// FollowedPodcast はユーザーがフォローしているポッドキャストを表す。
// (owner, podcast_id) の組で一意。
type FollowedPodcast struct {
	PodcastID  string
	Title      string
	Publisher  string
	Image      string
	FollowedAt time.Time
}

// SavedPodcast は保存されたポッドキャストまたはエピソードを表す。
// EpisodeIDがnilの場合は番組単位の保存。
// (owner, podcast_id, episode_id) の組で一意。
type SavedPodcast struct {
	PodcastID string
	EpisodeID *string
	Title     string
	Image     string
	BoardID   *string
	SavedAt   time.Time
}

// ListeningHistoryEntry はエピソードの再生履歴を表す。
// (owner, episode_id) の組で一意。再生進捗の更新のたびにUPSERTされる。
type ListeningHistoryEntry struct {
	EpisodeID    string
	PodcastID    string
	Title        string
	Image        string
	Progress     float64 // 再生進捗（0〜100のパーセンテージ）
	Duration     int     // エピソード長（秒）
	LastPlayedAt time.Time
}

// DownloadQuality はダウンロード品質の設定値。
type DownloadQuality string

const (
	// DownloadQualityHigh は高品質。
	DownloadQualityHigh DownloadQuality = "high"
	// DownloadQualityMedium は中品質。
	DownloadQualityMedium DownloadQuality = "medium"
	// DownloadQualityLow は低品質。
	DownloadQualityLow DownloadQuality = "low"
)

// Valid は品質設定が定義済みの値かどうかを返す。
func (q DownloadQuality) Valid() bool {
	switch q {
	case DownloadQualityHigh, DownloadQualityMedium, DownloadQualityLow:
		return true
	}
	return false
}

// Preferences はユーザーごとの再生設定。
// 行はサインアップ時に作成され、このレイヤーからは削除しない。
type Preferences struct {
	AutoPlay        bool
	PlaybackSpeed   float64
	DownloadQuality DownloadQuality
}

// DefaultPreferences は設定行が存在しない場合の読み取り時デフォルト値を返す。
func DefaultPreferences() Preferences {
	return Preferences{
		AutoPlay:        true,
		PlaybackSpeed:   1.0,
		DownloadQuality: DownloadQualityHigh,
	}
}

// PreferencesPatch は部分更新の入力。nilのフィールドは変更しない。
type PreferencesPatch struct {
	AutoPlay        *bool
	PlaybackSpeed   *float64
	DownloadQuality *DownloadQuality
}

// UserData はユーザーの全コレクションのスナップショット。
// 各コレクションは独立に取得され、いずれかの取得失敗は全体の失敗として扱う。
type UserData struct {
	UserID           string
	FollowedPodcasts []FollowedPodcast
	SavedPodcasts    []SavedPodcast
	ListeningHistory []ListeningHistoryEntry
	Preferences      Preferences
}
