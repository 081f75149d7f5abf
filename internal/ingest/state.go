// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import "time"

// PostStats is the set of cumulative counters kept for one post. Created
// lazily on first observation of a post_id; never deleted except by the
// hot-posts trimming rule in calcCurrentHotPosts.
type PostStats struct {
	Views         int64 `json:"views"`
	Plays         int64 `json:"plays"`
	Pauses        int64 `json:"pauses"`
	Unmutes       int64 `json:"unmutes"`
	CarouselLeft  int64 `json:"carousel_left"`
	CarouselRight int64 `json:"carousel_right"`
	Score         int64 `json:"score"`
}

// clone returns a value copy; PostStats has no reference fields so a plain
// dereference-and-copy suffices, but the helper keeps call sites explicit
// about intent.
func (s PostStats) clone() PostStats {
	return s
}

// applyAction increments the counter matching action and adds delta to the
// running score.
func (s *PostStats) applyAction(action Action, delta int64) {
	switch action {
	case ActionView:
		s.Views++
	case ActionPlay:
		s.Plays++
	case ActionPause:
		s.Pauses++
	case ActionUnmute:
		s.Unmutes++
	case ActionCarouselLeft:
		s.CarouselLeft++
	case ActionCarouselRight:
		s.CarouselRight++
	}
	s.Score += delta
}

// AggregateState is the engine's running aggregates plus derived rankings.
// The zero value is not meaningful; use NewAggregateState.
type AggregateState struct {
	StartTime     time.Time
	TotalEvents   int64
	TotalVisitors int64
	HotPosts      []string
	MostPlayed    []string
	PostStats     map[string]PostStats
}

// NewAggregateState returns a fresh, empty AggregateState with StartTime
// captured at construction, as spec.md §3 requires.
func NewAggregateState() *AggregateState {
	return &AggregateState{
		StartTime: time.Now().UTC(),
		HotPosts:  nil,
		PostStats: make(map[string]PostStats),
	}
}

// IncrementTotalEvents adds 1 to TotalEvents.
func (s *AggregateState) IncrementTotalEvents() {
	s.TotalEvents++
}

// IncrementTotalVisitors adds 1 to TotalVisitors.
func (s *AggregateState) IncrementTotalVisitors() {
	s.TotalVisitors++
}

// GetOrCreateStats returns a copy of the PostStats for postID, creating a
// zeroed entry in the map on first access. Callers that mutate the
// returned value must write it back with SetPostStat.
func (s *AggregateState) GetOrCreateStats(postID string) PostStats {
	if stats, ok := s.PostStats[postID]; ok {
		return stats
	}
	s.PostStats[postID] = PostStats{}
	return s.PostStats[postID]
}

// SetPostStat writes stats back into the post_stats map under postID.
func (s *AggregateState) SetPostStat(postID string, stats PostStats) {
	s.PostStats[postID] = stats
}

// SetHotPosts bulk-replaces the hot_posts list.
func (s *AggregateState) SetHotPosts(ids []string) {
	s.HotPosts = ids
}

// SetMostPlayed bulk-replaces the most_played list.
func (s *AggregateState) SetMostPlayed(ids []string) {
	s.MostPlayed = ids
}

// SetPostStats bulk-replaces the post_stats map.
func (s *AggregateState) SetPostStats(stats map[string]PostStats) {
	s.PostStats = stats
}

// SnapshotCopy returns a deep copy of s, safe to hand to a reader while the
// flush worker continues to mutate the original off a later batch.
func (s *AggregateState) SnapshotCopy() *AggregateState {
	cp := &AggregateState{
		StartTime:     s.StartTime,
		TotalEvents:   s.TotalEvents,
		TotalVisitors: s.TotalVisitors,
		HotPosts:      append([]string(nil), s.HotPosts...),
		MostPlayed:    append([]string(nil), s.MostPlayed...),
		PostStats:     make(map[string]PostStats, len(s.PostStats)),
	}
	for id, stats := range s.PostStats {
		cp.PostStats[id] = stats.clone()
	}
	return cp
}
