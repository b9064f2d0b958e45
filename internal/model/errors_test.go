package model

import (
	"strings"
	"testing"
)

// Error()がコードとメッセージを含む形式で返ることを検証
func TestAPIError_Error_ContainsCodeAndMessage(t *testing.T) {
	err := NewBoardNotFoundError("board-1")

	got := err.Error()
	if !strings.Contains(got, ErrCodeBoardNotFound) {
		t.Errorf("Error() = %q, should contain %q", got, ErrCodeBoardNotFound)
	}
	if !strings.Contains(got, err.Message) {
		t.Errorf("Error() = %q, should contain message %q", got, err.Message)
	}
}

// 各コンストラクタがコード・カテゴリ・対処方法を設定することを検証
func TestAPIErrorConstructors_SetFields(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		code     string
		category string
	}{
		{"auth_required", NewAuthRequiredError(), ErrCodeAuthRequired, "auth"},
		{"board_not_found", NewBoardNotFoundError("b-1"), ErrCodeBoardNotFound, "board"},
		{"empty_board_name", NewEmptyBoardNameError(), ErrCodeEmptyBoardName, "validation"},
		{"episode_not_in_history", NewEpisodeNotInHistoryError("ep-1"), ErrCodeEpisodeNotInHistory, "library"},
		{"invalid_progress", NewInvalidProgressError(150), ErrCodeInvalidProgress, "validation"},
		{"invalid_preferences", NewInvalidPreferencesError("speed"), ErrCodeInvalidPreferences, "validation"},
		{"podcast_not_found", NewPodcastNotFoundError("pod-1"), ErrCodePodcastNotFound, "catalog"},
		{"invalid_feed_url", NewInvalidFeedURLError("scheme"), ErrCodeInvalidFeedURL, "validation"},
		{"catalog_unavailable", NewCatalogUnavailableError(), ErrCodeCatalogUnavailable, "catalog"},
		{"user_not_found", NewUserNotFoundError(), ErrCodeUserNotFound, "auth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Category != tt.category {
				t.Errorf("Category = %q, want %q", tt.err.Category, tt.category)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
			if tt.err.Action == "" {
				t.Error("Action should not be empty")
			}
		})
	}
}
