// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package wal provides a durable, append-only write-ahead log for ingested
// events.
//
// The log is a flat file of newline-delimited JSON objects, one per event,
// in ingest order. It exists purely for after-the-fact inspection and
// possible future replay; the running engine never reads it back on
// startup, only the snapshot does. A write failure is swallowed by design:
// the WAL is best-effort durability, never a blocking dependency for
// ingestion.
//
// # Usage
//
//	w, err := wal.Open(filepath.Join(dataDir, "wal.log"))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	w.Append(ctx, wal.Record{PostID: "p1", UserID: "u1", Action: "play", CreatedAt: time.Now()})
//
// # Circuit breaker
//
// Append is wrapped internally by a sony/gobreaker/v2 breaker: once a run of
// writes fails (a full disk, a permission error), the breaker opens and
// further Append calls return immediately without touching the filesystem
// until a cooldown probe succeeds. Callers never see the breaker's state;
// Append never returns an error a caller is expected to act on.
package wal
