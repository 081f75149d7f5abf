// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package wal

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()

	ctx := context.Background()
	now := time.Now()
	w.Append(ctx, Record{PostID: "p1", UserID: "u1", Action: "play", CreatedAt: now})
	w.Append(ctx, Record{PostID: "p2", UserID: "u2", Action: "view", CreatedAt: now})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open for read: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"post_id":"p1"`) || !strings.Contains(lines[0], `"action":"play"`) {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"post_id":"p2"`) {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}

func TestOpenCreatesFileOnFreshPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	w.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected wal file to exist: %v", err)
	}
}

func TestOpenFailsForMissingParentDirectory(t *testing.T) {
	w, err := Open(filepath.Join(t.TempDir(), "nonexistent-dir", "wal.log"))
	if err == nil {
		w.Close()
		t.Fatal("expected Open to fail for a missing parent directory")
	}
}
