// Package library はフォロー・保存・再生履歴・設定のドメインロジックを提供する。
package library

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/castboard/internal/auth"
	"github.com/hitoshi/castboard/internal/metrics"
	"github.com/hitoshi/castboard/internal/model"
	"github.com/hitoshi/castboard/internal/repository"
)

// defaultHistoryLimit は再生履歴一覧のデフォルト件数。
const defaultHistoryLimit = 10

// Service はユーザーコレクションのサービス層。
// フォロー・保存・再生履歴・設定の読み書きと、全データの
// スナップショット取得・一括消去のビジネスロジックを提供する。
type Service struct {
	followedRepo repository.FollowedPodcastRepository
	savedRepo    repository.SavedPodcastRepository
	historyRepo  repository.ListeningHistoryRepository
	prefsRepo    repository.PreferencesRepository
	users        auth.UserSource
	collector    metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	followedRepo repository.FollowedPodcastRepository,
	savedRepo repository.SavedPodcastRepository,
	historyRepo repository.ListeningHistoryRepository,
	prefsRepo repository.PreferencesRepository,
	users auth.UserSource,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		followedRepo: followedRepo,
		savedRepo:    savedRepo,
		historyRepo:  historyRepo,
		prefsRepo:    prefsRepo,
		users:        users,
		collector:    collector,
	}
}

// --- フォロー ---

// ListFollowed はフォロー中の番組をフォロー日時の新しい順で返す。
// 未認証の場合は空スライスを返す。
func (s *Service) ListFollowed(ctx context.Context) ([]model.FollowedPodcast, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return []model.FollowedPodcast{}, nil
	}

	followed, err := s.followedRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	if followed == nil {
		followed = []model.FollowedPodcast{}
	}
	return followed, nil
}

// Follow は番組をフォローする。冪等: 既にフォロー済みの場合、
// 一意制約違反を吸収して成功として扱い、既存行は変更しない
// （followedAtもそのまま）。それ以外の失敗はそのまま伝播する。
func (s *Service) Follow(ctx context.Context, p model.FollowedPodcast) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.followedRepo.Insert(ctx, userID, &p); err != nil {
		if repository.IsUniqueViolation(err) {
			s.collector.RecordDuplicateFollow()
			slog.Debug("フォロー済みの番組を再フォロー（no-op）",
				slog.String("user_id", userID),
				slog.String("podcast_id", p.PodcastID),
			)
			return nil
		}
		return fmt.Errorf("フォローに失敗しました: %w", err)
	}
	return nil
}

// Unfollow はフォローを解除する。対象行がなくてもエラーにしない。
func (s *Service) Unfollow(ctx context.Context, podcastID string) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.followedRepo.Delete(ctx, userID, podcastID); err != nil {
		return fmt.Errorf("フォロー解除に失敗しました: %w", err)
	}
	return nil
}

// IsFollowing はフォロー中かどうかを返す。
// 失敗しない読み取り: 未認証・参照エラーのいずれもfalseを返す。
func (s *Service) IsFollowing(ctx context.Context, podcastID string) bool {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return false
	}

	exists, err := s.followedRepo.Exists(ctx, userID, podcastID)
	if err != nil {
		s.collector.RecordFailSafeRead("is_following")
		slog.Warn("フォロー状態の参照に失敗（falseとして返却）",
			slog.String("user_id", userID),
			slog.String("podcast_id", podcastID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return exists
}

// --- 保存 ---

// ListSaved は保存済みの番組・エピソードを保存日時の新しい順で返す。
// boardIDを指定すると対象ボードの保存のみに絞り込む。
// 未認証の場合は空スライスを返す。
func (s *Service) ListSaved(ctx context.Context, boardID *string) ([]model.SavedPodcast, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return []model.SavedPodcast{}, nil
	}

	saved, err := s.savedRepo.ListByOwner(ctx, userID, boardID)
	if err != nil {
		return nil, fmt.Errorf("保存一覧の取得に失敗しました: %w", err)
	}
	if saved == nil {
		saved = []model.SavedPodcast{}
	}
	return saved, nil
}

// Save は番組またはエピソードを保存する。
// (owner, podcastId, episodeId-or-null)をキーにしたUPSERTで、
// 衝突時はtitle・image・boardを上書きする。
func (s *Service) Save(ctx context.Context, entry model.SavedPodcast) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.savedRepo.Upsert(ctx, userID, &entry); err != nil {
		return fmt.Errorf("保存に失敗しました: %w", err)
	}
	return nil
}

// Unsave は保存を解除する。episodeIDがnilの場合、その番組の全保存行
// （番組単位の保存とエピソード単位の保存の両方）を削除する。
// 対象行がなくてもエラーにしない。
func (s *Service) Unsave(ctx context.Context, podcastID string, episodeID *string) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.savedRepo.Delete(ctx, userID, podcastID, episodeID); err != nil {
		return fmt.Errorf("保存解除に失敗しました: %w", err)
	}
	return nil
}

// IsSaved は保存済みかどうかを返す。
// 失敗しない読み取り: 未認証・参照エラーのいずれもfalseを返す。
func (s *Service) IsSaved(ctx context.Context, podcastID string, episodeID *string) bool {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return false
	}

	exists, err := s.savedRepo.Exists(ctx, userID, podcastID, episodeID)
	if err != nil {
		s.collector.RecordFailSafeRead("is_saved")
		slog.Warn("保存状態の参照に失敗（falseとして返却）",
			slog.String("user_id", userID),
			slog.String("podcast_id", podcastID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return exists
}

// --- 再生履歴 ---

// ListHistory は再生履歴をlastPlayedAtの新しい順で最大limit件返す。
// limitが0以下の場合はデフォルト件数を使う。未認証の場合は空スライスを返す。
func (s *Service) ListHistory(ctx context.Context, limit int) ([]model.ListeningHistoryEntry, error) {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return []model.ListeningHistoryEntry{}, nil
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.historyRepo.ListByOwner(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("再生履歴の取得に失敗しました: %w", err)
	}
	if entries == nil {
		entries = []model.ListeningHistoryEntry{}
	}
	return entries, nil
}

// RecordPlay は再生を記録する。(owner, episodeId)をキーにしたUPSERTで、
// lastPlayedAtは常に書き込み時刻に更新される。
func (s *Service) RecordPlay(ctx context.Context, entry model.ListeningHistoryEntry) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if entry.Progress < 0 || entry.Progress > 100 {
		return model.NewInvalidProgressError(entry.Progress)
	}

	if err := s.historyRepo.Upsert(ctx, userID, &entry); err != nil {
		return fmt.Errorf("再生の記録に失敗しました: %w", err)
	}
	return nil
}

// UpdateProgress は既存履歴行の再生進捗を更新し、lastPlayedAtを現在時刻にする。
// 対象行がない場合は失敗する: 先にRecordPlayで行を作っておく必要があり、
// 暗黙の行作成はしない。
func (s *Service) UpdateProgress(ctx context.Context, episodeID string, progress float64) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if progress < 0 || progress > 100 {
		return model.NewInvalidProgressError(progress)
	}

	updated, err := s.historyRepo.UpdateProgress(ctx, userID, episodeID, progress)
	if err != nil {
		return fmt.Errorf("再生進捗の更新に失敗しました: %w", err)
	}
	if !updated {
		return model.NewEpisodeNotInHistoryError(episodeID)
	}
	return nil
}

// ClearHistory は呼び出しユーザーの全再生履歴を削除する。
func (s *Service) ClearHistory(ctx context.Context) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if err := s.historyRepo.DeleteAllByOwner(ctx, userID); err != nil {
		return fmt.Errorf("再生履歴の削除に失敗しました: %w", err)
	}
	return nil
}

// --- 設定 ---

// GetPreferences はユーザー設定を返す。常に成功する契約:
// 未認証・行なし・参照エラーのいずれの場合もデフォルト値を返す。
func (s *Service) GetPreferences(ctx context.Context) model.Preferences {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.DefaultPreferences()
	}

	prefs, err := s.prefsRepo.FindByUser(ctx, userID)
	if err != nil {
		s.collector.RecordFailSafeRead("get_preferences")
		slog.Warn("設定の参照に失敗（デフォルト値を返却）",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return model.DefaultPreferences()
	}
	if prefs == nil {
		return model.DefaultPreferences()
	}
	return *prefs
}

// UpdatePreferences は指定されたフィールドのみを更新する。
func (s *Service) UpdatePreferences(ctx context.Context, patch model.PreferencesPatch) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	if patch.PlaybackSpeed != nil && *patch.PlaybackSpeed <= 0 {
		return model.NewInvalidPreferencesError(fmt.Sprintf("再生速度 %.2f", *patch.PlaybackSpeed))
	}
	if patch.DownloadQuality != nil && !patch.DownloadQuality.Valid() {
		return model.NewInvalidPreferencesError(fmt.Sprintf("ダウンロード品質 %q", *patch.DownloadQuality))
	}

	if err := s.prefsRepo.Apply(ctx, userID, patch); err != nil {
		return fmt.Errorf("設定の更新に失敗しました: %w", err)
	}
	return nil
}

// --- 集約 ---

// GetAllUserData は4つのコレクションを並行に取得してスナップショットを組み立てる。
// 取得の間に順序の保証はなく、いずれか1つの失敗は全体の失敗として伝播する
// （部分成功モードはない）。
func (s *Service) GetAllUserData(ctx context.Context, ownerID string) (*model.UserData, error) {
	data := &model.UserData{UserID: ownerID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		followed, err := s.followedRepo.ListByOwner(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
		}
		if followed == nil {
			followed = []model.FollowedPodcast{}
		}
		data.FollowedPodcasts = followed
		return nil
	})

	g.Go(func() error {
		saved, err := s.savedRepo.ListByOwner(gctx, ownerID, nil)
		if err != nil {
			return fmt.Errorf("保存一覧の取得に失敗しました: %w", err)
		}
		if saved == nil {
			saved = []model.SavedPodcast{}
		}
		data.SavedPodcasts = saved
		return nil
	})

	g.Go(func() error {
		entries, err := s.historyRepo.ListByOwner(gctx, ownerID, 0)
		if err != nil {
			return fmt.Errorf("再生履歴の取得に失敗しました: %w", err)
		}
		if entries == nil {
			entries = []model.ListeningHistoryEntry{}
		}
		data.ListeningHistory = entries
		return nil
	})

	g.Go(func() error {
		prefs, err := s.prefsRepo.FindByUser(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("設定の取得に失敗しました: %w", err)
		}
		if prefs == nil {
			data.Preferences = model.DefaultPreferences()
		} else {
			data.Preferences = *prefs
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// ClearAllUserData はフォロー・保存・再生履歴を並行に全削除する。
// 設定はサインアップ時に作成されたまま意図的に残す: データリセット後も
// 再生速度などのユーザー設定は生き続ける。
func (s *Service) ClearAllUserData(ctx context.Context) error {
	userID, ok := s.users.CurrentUserID(ctx)
	if !ok {
		return model.NewAuthRequiredError()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.followedRepo.DeleteAllByOwner(gctx, userID); err != nil {
			return fmt.Errorf("フォロー行の削除に失敗しました: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.savedRepo.DeleteAllByOwner(gctx, userID); err != nil {
			return fmt.Errorf("保存行の削除に失敗しました: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.historyRepo.DeleteAllByOwner(gctx, userID); err != nil {
			return fmt.Errorf("再生履歴行の削除に失敗しました: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.collector.RecordUserDataCleared()
	slog.Info("ユーザーデータを全消去（設定は保持）",
		slog.String("user_id", userID),
	)
	return nil
}
