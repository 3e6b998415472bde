// Package store persists admitted crash reports. Two backends exist: a
// REST client for a hosted relational store reached over HTTP, and a direct
// Postgres pool. Both perform single-row inserts with no retry loop; retry
// on failure is the reporting client's job.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/crashgate-io/crashgate/internal/model"
)

// Store is the persistence gateway consumed by the request handlers.
type Store interface {
	// Insert persists one report as a single atomic row insert.
	Insert(ctx context.Context, report *model.CrashReport) error
	// List returns stored reports matching q, newest first.
	List(ctx context.Context, q model.ReportQuery) ([]model.StoredReport, error)
	// Summary returns per-(version, platform, day) crash counts for appName
	// over the trailing days.
	Summary(ctx context.Context, appName string, days int) ([]model.SummaryRow, error)
}

// ErrNotConfigured marks a backend whose endpoint or credential is missing.
var ErrNotConfigured = errors.New("storage backend not configured")

// RemoteError is a non-2xx rejection from the storage collaborator.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("storage collaborator rejected request: status %d: %s", e.Status, e.Body)
}

// Failure kinds, used to keep persistence failures distinguishable in logs
// while the client sees one generic response.
const (
	KindConfiguration   = "configuration"
	KindRemoteRejection = "remote_rejection"
	KindTransport       = "transport"
)

// Kind classifies a persistence failure for logging.
func Kind(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return KindConfiguration
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return KindRemoteRejection
	}
	return KindTransport
}
