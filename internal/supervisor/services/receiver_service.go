// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"fmt"
)

// ContextRunner matches receiver.Receiver's Run method, which already
// implements the suture.Service shape directly.
type ContextRunner interface {
	Run(ctx context.Context) error
}

// Closer matches receiver.Receiver's Close method.
type Closer interface {
	Close() error
}

// ReceiverService wraps the NATS event receiver as a supervised service,
// closing its underlying subscriber whenever Run returns so a restart opens
// a fresh subscription instead of reusing a closed one.
type ReceiverService struct {
	receiver interface {
		ContextRunner
		Closer
	}
	name string
}

// NewReceiverService creates a new receiver service wrapper.
func NewReceiverService(receiver interface {
	ContextRunner
	Closer
}) *ReceiverService {
	return &ReceiverService{receiver: receiver, name: "nats-receiver"}
}

// Serve implements suture.Service.
func (r *ReceiverService) Serve(ctx context.Context) error {
	err := r.receiver.Run(ctx)
	if closeErr := r.receiver.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close receiver: %w", closeErr)
	}
	return err
}

// String implements fmt.Stringer; suture uses it to identify the service in logs.
func (r *ReceiverService) String() string {
	return r.name
}
