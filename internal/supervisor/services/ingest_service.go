// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import "context"

// StartStopManager matches ingest.Manager's Start/Stop lifecycle.
type StartStopManager interface {
	Start()
	Stop()
}

// IngestService wraps the ingest manager's flush worker as a supervised
// service. Start() spawns the worker's goroutines and returns immediately;
// Stop() blocks until they exit and the buffer is drained through one
// final flush.
type IngestService struct {
	manager StartStopManager
	name    string
}

// NewIngestService creates a new ingest service wrapper.
func NewIngestService(manager StartStopManager) *IngestService {
	return &IngestService{manager: manager, name: "ingest-manager"}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	s.manager.Start()
	<-ctx.Done()
	s.manager.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to identify the service in logs.
func (s *IngestService) String() string {
	return s.name
}
