// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"

	"github.com/hotlist/postpulse/internal/logging"
)

// snapshotDocument is the on-disk shape of state.json.
type snapshotDocument struct {
	StartTime     int64                `json:"start_time"`
	TotalEvents   int64                `json:"total_events"`
	TotalVisitors int64                `json:"total_visitors"`
	HotPosts      []string             `json:"hot_posts"`
	MostPlayed    []string             `json:"most_played"`
	PostStats     map[string]PostStats `json:"post_stats"`
}

// StateView is the JSON-serializable representation of an AggregateState,
// matching the on-disk snapshot schema. It is what the read-side HTTP API
// exposes at /v1/state.
type StateView = snapshotDocument

// View converts s into its externally-visible representation.
func (s *AggregateState) View() StateView {
	return toDocument(s)
}

func toDocument(s *AggregateState) snapshotDocument {
	trimmed := make(map[string]PostStats, len(s.HotPosts))
	for _, id := range s.HotPosts {
		if stats, ok := s.PostStats[id]; ok {
			trimmed[id] = stats
		}
	}
	return snapshotDocument{
		StartTime:     s.StartTime.UnixMilli(),
		TotalEvents:   s.TotalEvents,
		TotalVisitors: s.TotalVisitors,
		HotPosts:      s.HotPosts,
		MostPlayed:    s.MostPlayed,
		PostStats:     trimmed,
	}
}

func fromDocument(doc snapshotDocument) *AggregateState {
	stats := doc.PostStats
	if stats == nil {
		stats = make(map[string]PostStats)
	}
	return &AggregateState{
		StartTime:     time.UnixMilli(doc.StartTime).UTC(),
		TotalEvents:   doc.TotalEvents,
		TotalVisitors: doc.TotalVisitors,
		HotPosts:      doc.HotPosts,
		MostPlayed:    doc.MostPlayed,
		PostStats:     stats,
	}
}

// checksumPath returns the sidecar path for a snapshot file, e.g.
// state.json -> state.json.sum.
func checksumPath(snapshotPath string) string {
	return snapshotPath + ".sum"
}

// saveStateToFile serializes state as one JSON document and rewrites the
// snapshot file via write-tempfile-then-rename, so a reader after a crash
// mid-write always sees either the prior or the new complete document. A
// BLAKE2b-256 digest of the serialized bytes is written to a ".sum" sidecar
// after the rename succeeds, letting loadPrevState detect a torn or
// bit-rotted snapshot that nonetheless parses as valid JSON.
//
// The returned error exists only so the caller's circuit breaker can track
// consecutive failures; callers must not surface it to producers. The
// in-memory state remains correct regardless, and the next successful
// flush retries the write from scratch.
func saveStateToFile(path string, state *AggregateState) error {
	doc := toDocument(state)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	sum := blake2b.Sum256(data)
	return writeFileAtomic(checksumPath(path), []byte(hex.EncodeToString(sum[:])))
}

// writeFileAtomic writes data to a temp file in the same directory as path,
// then renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// loadPrevState reads and parses the snapshot at path, falling back to a
// fresh state on any missing file, parse failure, or checksum mismatch. A
// missing ".sum" sidecar is treated as "unknown, don't trust" rather than
// "trusted": it downgrades an otherwise-parseable document to the same
// fresh-state fallback used for outright parse failures.
func loadPrevState(ctx context.Context, path string) *AggregateState {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Ctx(ctx).Info().Err(err).Msg("snapshot read failed, starting fresh")
		}
		return NewAggregateState()
	}

	sumHex, err := os.ReadFile(checksumPath(path))
	if err != nil {
		logging.Ctx(ctx).Warn().Msg("snapshot checksum missing, discarding snapshot")
		return NewAggregateState()
	}
	sum, err := hex.DecodeString(string(bytes.TrimSpace(sumHex)))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("snapshot checksum malformed, discarding snapshot")
		return NewAggregateState()
	}
	want := blake2b.Sum256(data)
	if !bytes.Equal(sum, want[:]) {
		logging.Ctx(ctx).Warn().Msg("snapshot checksum mismatch, discarding snapshot")
		return NewAggregateState()
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("snapshot parse failed, starting fresh")
		return NewAggregateState()
	}

	return fromDocument(doc)
}
