// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package supervisor provides process supervision for Postpulse using
thejerf/suture/v4.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("postpulse")
	├── IngestSupervisor ("ingest-layer")
	│   └── flush worker service wrapping ingest.Manager's Start/Stop
	├── ReceiverSupervisor ("receiver-layer")
	│   └── NATS/Watermill event subscriber service
	└── APISupervisor ("api-layer")
	    ├── HTTP server service
	    └── live-feed hub run loop

A crash in receiver doesn't stop the ingest layer from continuing to drain
its buffer, and vice versa.

# Usage Example

	logger := slog.Default()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddIngestService(ingestService)
	tree.AddReceiverService(receiverService)
	tree.AddAPIService(apiService)

	if err := tree.Serve(ctx); err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Configuration

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,
	    FailureDecay:     30.0,
	    FailureBackoff:   15 * time.Second,
	    ShutdownTimeout:  10 * time.Second,
	}

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil means the service stopped cleanly and will not be restarted;
returning an error means it crashed and suture restarts it with backoff.

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("service didn't stop: %v", svc)
	}

# Thread Safety

SupervisorTree is safe for concurrent use: services can be added from any
goroutine and multiple services may crash simultaneously without corrupting
tree state.
*/
package supervisor
