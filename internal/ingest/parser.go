// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import "sort"

// TopK is the default size bound on hot_posts and most_played, used when a
// folder is constructed with k <= 0.
const TopK = 10

// folder computes the next AggregateState from a batch of events folded onto
// a prior state. It is a pure function of (prevState, batch): prevState is
// never mutated, and currentState starts life as a deep copy of it.
//
// The two operations, tallyWithPrev and calcCurrentHotPosts, must run in
// that order — calcCurrentHotPosts depends on post_stats already reflecting
// the batch.
type folder struct {
	batch        []Event
	prevState    *AggregateState
	currentState *AggregateState
	k            int
}

// newFolder constructs a folder over batch and prevState, seeding
// currentState with a deep copy of prevState. k bounds hot_posts and
// most_played; k <= 0 falls back to TopK.
func newFolder(batch []Event, prevState *AggregateState, k int) *folder {
	if k <= 0 {
		k = TopK
	}
	return &folder{
		batch:        batch,
		prevState:    prevState,
		currentState: prevState.SnapshotCopy(),
		k:            k,
	}
}

// tallyWithPrev folds every event in the batch into currentState's counters
// and per-post stats, then recomputes most_played.
//
// The set of user_ids seen is scoped to this batch alone: total_visitors is
// incremented once per (batch, user_id) pair, not once per (lifetime,
// user_id). A user_id appearing in three separate batches increments
// total_visitors three times. This is a preserved quirk, not a bug to fix.
func (f *folder) tallyWithPrev() {
	seenUsers := make(map[string]struct{})

	for _, evt := range f.batch {
		f.currentState.IncrementTotalEvents()

		if _, ok := seenUsers[evt.UserID]; !ok {
			seenUsers[evt.UserID] = struct{}{}
			f.currentState.IncrementTotalVisitors()
		}

		stats := f.currentState.GetOrCreateStats(evt.PostID)
		stats.applyAction(evt.Action, evt.Score())
		f.currentState.SetPostStat(evt.PostID, stats)
	}

	f.currentState.SetMostPlayed(topPlayed(f.currentState.PostStats, f.k))
}

// topPlayed returns up to k post_ids from stats ordered by Plays descending.
// Ties are broken by Go's map iteration order, which is randomized per spec
// and must not be relied on for a stable order.
func topPlayed(stats map[string]PostStats, k int) []string {
	type entry struct {
		id    string
		plays int64
	}
	entries := make([]entry, 0, len(stats))
	for id, s := range stats {
		entries = append(entries, entry{id: id, plays: s.Plays})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].plays > entries[j].plays
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// calcCurrentHotPosts recomputes hot_posts with an explicit carry-over merge
// from prevState.HotPosts, and trims currentState.PostStats down to the
// resulting hot set.
//
// The carry-over step only ever activates once the provisional hot list has
// already reached k entries; if the batch plus prior stats together
// produce fewer than k candidates, a previously-hot post that fell out of
// the provisional set is not restored. This asymmetry is preserved
// verbatim, not corrected.
func (f *folder) calcCurrentHotPosts() {
	batchScores := make(map[string]int64)
	for _, evt := range f.batch {
		batchScores[evt.PostID] += evt.Score()
	}

	allScores := make(map[string]int64, len(f.currentState.PostStats))
	for id, s := range f.currentState.PostStats {
		allScores[id] = s.Score
	}
	for id, delta := range batchScores {
		allScores[id] += delta
	}

	ordered := sortedByScoreDesc(allScores)

	provisional := ordered
	if len(provisional) > f.k {
		provisional = provisional[:f.k]
	}

	hotStats := make(map[string]PostStats, len(provisional))
	hotOrder := make([]string, 0, len(provisional))
	inHot := make(map[string]struct{}, len(provisional))
	for _, id := range provisional {
		stats, ok := f.currentState.PostStats[id]
		if !ok {
			stats = PostStats{Score: allScores[id]}
		}
		hotStats[id] = stats
		hotOrder = append(hotOrder, id)
		inHot[id] = struct{}{}
	}

	for _, id := range f.prevState.HotPosts {
		if _, already := inHot[id]; already {
			continue
		}
		if len(hotOrder) < f.k {
			continue
		}
		prevStats, ok := f.prevState.PostStats[id]
		if !ok {
			continue
		}
		lowestIdx, lowestScore := lowestScoringIndex(hotOrder, hotStats)
		if prevStats.Score <= lowestScore {
			continue
		}
		evicted := hotOrder[lowestIdx]
		delete(hotStats, evicted)
		delete(inHot, evicted)
		hotOrder[lowestIdx] = id
		hotStats[id] = prevStats
		inHot[id] = struct{}{}
	}

	f.currentState.SetHotPosts(hotOrder)
	f.currentState.SetPostStats(hotStats)
}

// sortedByScoreDesc returns the keys of scores ordered by value descending.
// Ties fall back to Go's map iteration order, which is randomized and must
// be treated as unspecified by callers.
func sortedByScoreDesc(scores map[string]int64) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return scores[ids[i]] > scores[ids[j]]
	})
	return ids
}

// lowestScoringIndex returns the index into order of the first entry
// (in order) holding the lowest score in stats, implementing the
// first-encountered tie-break rule for carry-over eviction.
func lowestScoringIndex(order []string, stats map[string]PostStats) (int, int64) {
	lowestIdx := 0
	lowestScore := stats[order[0]].Score
	for i, id := range order {
		if stats[id].Score < lowestScore {
			lowestIdx = i
			lowestScore = stats[id].Score
		}
	}
	return lowestIdx, lowestScore
}

// saveCurrentState snapshots currentState into prevState in place. This is a
// testability hook only; the manager's flush path does not call it, since
// the manager already treats the folder's currentState as the new
// authoritative state.
func (f *folder) saveCurrentState() {
	*f.prevState = *f.currentState.SnapshotCopy()
}
