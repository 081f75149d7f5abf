// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest holds the core aggregation pipeline: events, the running
// aggregate state, the batch folder, and the manager that ties buffering,
// write-ahead logging, and snapshot persistence together.
package ingest

import "time"

// Action identifies the kind of interaction recorded by an Event.
type Action string

// The closed set of interaction kinds the engine understands. An action
// string that does not match one of these is scored as 0 and, on the
// receive path, defaults to ActionView.
const (
	ActionView          Action = "view"
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionUnmute        Action = "unmute"
	ActionCarouselLeft  Action = "carousel_left"
	ActionCarouselRight Action = "carousel_right"
)

// actionWeights is the fixed action->score table. It is intentionally not
// exported: score lookups always go through Score so an unknown action
// scores 0 instead of panicking on a missing map entry.
var actionWeights = map[Action]int64{
	ActionView:          1,
	ActionPlay:          2,
	ActionUnmute:        1,
	ActionPause:         -1,
	ActionCarouselLeft:  0,
	ActionCarouselRight: 0,
}

// Event is one immutable recorded interaction on a post.
type Event struct {
	PostID    string
	UserID    string
	Action    Action
	CreatedAt time.Time
}

// NewEvent constructs an Event verbatim from its fields. No validation is
// performed here; the receiver adapter is responsible for rejecting
// malformed input before it reaches the core.
func NewEvent(postID, userID string, action Action, createdAt time.Time) Event {
	return Event{
		PostID:    postID,
		UserID:    userID,
		Action:    action,
		CreatedAt: createdAt,
	}
}

// Score returns the integer weight of the event's action, or 0 for an
// action outside the fixed table. This keeps scoring forward compatible
// with action kinds the engine does not yet know about.
func (e Event) Score() int64 {
	return actionWeights[e.Action]
}
