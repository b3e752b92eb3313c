package domain

import "slices"

// Settings is the flat user preference record. It is persisted by the
// adapter layer and read by services as a snapshot at the start of each call.
type Settings struct {
	LastTab     Tab                `mapstructure:"last_tab" json:"last_tab"`
	EnabledTabs []Tab              `mapstructure:"enabled_tabs" json:"enabled_tabs"`
	PageSize    int                `mapstructure:"page_size" json:"page_size"`
	Filter      FilterSettings     `mapstructure:"filter" json:"filter"`
	Watchlater  WatchlaterSettings `mapstructure:"watchlater" json:"watchlater"`
	Fav         FavSettings        `mapstructure:"fav" json:"fav"`
	Dynamic     DynamicSettings    `mapstructure:"dynamic" json:"dynamic"`
	Hot         HotSettings        `mapstructure:"hot" json:"hot"`
	Live        LiveSettings       `mapstructure:"live" json:"live"`
}

// FilterSettings holds the client-side filter thresholds.
type FilterSettings struct {
	Enabled              bool     `mapstructure:"enabled" json:"enabled"`
	MinPlayCount         int64    `mapstructure:"min_play_count" json:"min_play_count"`
	MinDurationSeconds   int      `mapstructure:"min_duration_seconds" json:"min_duration_seconds"`
	BlockedAuthors       []string `mapstructure:"blocked_authors" json:"blocked_authors"`
	BlockedTitleKeywords []string `mapstructure:"blocked_title_keywords" json:"blocked_title_keywords"`
	ExemptFollowed       bool     `mapstructure:"exempt_followed" json:"exempt_followed"`
}

type WatchlaterSettings struct {
	Shuffle      bool `mapstructure:"shuffle" json:"shuffle"`
	AddSeparator bool `mapstructure:"add_separator" json:"add_separator"`
}

type FavSettings struct {
	Shuffle           bool    `mapstructure:"shuffle" json:"shuffle"`
	AddSeparator      bool    `mapstructure:"add_separator" json:"add_separator"`
	FolderID          int64   `mapstructure:"folder_id" json:"folder_id"` // 0 = all folders
	ExcludedFolderIDs []int64 `mapstructure:"excluded_folder_ids" json:"excluded_folder_ids"`
}

type DynamicSettings struct {
	UpMid              int64  `mapstructure:"up_mid" json:"up_mid"`
	FollowGroupTagID   int64  `mapstructure:"follow_group_tag_id" json:"follow_group_tag_id"`
	SearchText         string `mapstructure:"search_text" json:"search_text"`
	ShowLive           bool   `mapstructure:"show_live" json:"show_live"`
	MinDurationSeconds int    `mapstructure:"min_duration_seconds" json:"min_duration_seconds"`
}

type HotSettings struct {
	WeeklyShuffle bool `mapstructure:"weekly_shuffle" json:"weekly_shuffle"`
	RankingRid    int  `mapstructure:"ranking_rid" json:"ranking_rid"`
}

type LiveSettings struct {
	ShowRecent bool `mapstructure:"show_recent" json:"show_recent"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		LastTab:     TabAppRecommend,
		EnabledTabs: AllTabs(),
		PageSize:    20,
		Filter: FilterSettings{
			ExemptFollowed: true,
		},
		Watchlater: WatchlaterSettings{
			AddSeparator: true,
		},
		Fav: FavSettings{
			AddSeparator: true,
		},
		Dynamic: DynamicSettings{
			ShowLive: true,
		},
		Live: LiveSettings{
			ShowRecent: true,
		},
	}
}

// Clone returns a deep copy so snapshots never share slices with the holder.
func (s Settings) Clone() Settings {
	s.EnabledTabs = slices.Clone(s.EnabledTabs)
	s.Filter.BlockedAuthors = slices.Clone(s.Filter.BlockedAuthors)
	s.Filter.BlockedTitleKeywords = slices.Clone(s.Filter.BlockedTitleKeywords)
	s.Fav.ExcludedFolderIDs = slices.Clone(s.Fav.ExcludedFolderIDs)
	return s
}

// EffectivePageSize returns PageSize or the default when unset.
func (s Settings) EffectivePageSize() int {
	if s.PageSize <= 0 {
		return 20
	}
	return s.PageSize
}

// TabEnabled reports whether tab is listed in EnabledTabs (all when empty).
func (s Settings) TabEnabled(tab Tab) bool {
	return len(s.EnabledTabs) == 0 || slices.Contains(s.EnabledTabs, tab)
}
