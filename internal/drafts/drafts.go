// Package drafts owns the in-memory collection of per-platform draft records.
// All mutation flows through the Manager; consumers only ever see copies.
package drafts

import (
	"errors"

	"github.com/google/uuid"
	"github.com/synthetix-ai/drafter/internal/domain"
)

var (
	ErrNotFound   = errors.New("no draft for platform")
	ErrStaleBatch = errors.New("draft batch was replaced while the operation was in flight")
)

// Ticket identifies one begun image operation: the record it targets and the
// batch it belongs to. Completion by platform name alone is not enough — the
// collection may have been regenerated during the await, and a stale result
// must not land on a newer record of the same name.
type Ticket struct {
	BatchID  uuid.UUID
	Platform domain.Platform
}

//go:generate go run go.uber.org/mock/mockgen -source=drafts.go -destination=mocks/mock.go

// Manager is the single owner of the draft collection.
//
// Overlapping image requests on one record are allowed: a second BeginImage
// simply keeps the in-flight flag set and whichever completion resolves last
// wins, matching the re-render behavior of the presentation layer.
type Manager interface {
	// InstallBatch atomically replaces the whole collection with fresh records
	// built from the seeds and returns the new batch identity. This is the
	// only operation that changes the set of platforms present.
	InstallBatch(seeds []domain.DraftSeed) uuid.UUID

	// BatchID returns the identity of the currently installed batch, or
	// uuid.Nil when no batch has been installed.
	BatchID() uuid.UUID

	// Snapshot returns copies of all records in installation order.
	Snapshot() []domain.DraftRecord

	// Get returns a copy of the record for the platform.
	Get(platform domain.Platform) (domain.DraftRecord, error)

	// EditContent replaces the content of the matching record only.
	EditContent(platform domain.Platform, content string) error

	// BeginImage marks the matching record in-flight and returns the ticket
	// required to complete or fail the operation.
	BeginImage(platform domain.Platform) (Ticket, error)

	// CompleteImage installs the image reference and clears the in-flight
	// flag. A ticket from a replaced batch is rejected with ErrStaleBatch.
	CompleteImage(t Ticket, imageURL string) error

	// FailImage clears the in-flight flag and leaves any prior image
	// reference untouched. A stale ticket is rejected with ErrStaleBatch.
	FailImage(t Ticket) error
}
