package draftsimpl

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/drafts"
	"github.com/synthetix-ai/drafter/pkg/logger"
)

func newManager() *ManagerImpl {
	return New(Opts{Logger: logger.NewNop()})
}

func sevenSeeds() []domain.DraftSeed {
	seeds := make([]domain.DraftSeed, 0, len(domain.TargetPlatforms))
	for _, p := range domain.TargetPlatforms {
		seeds = append(seeds, domain.DraftSeed{
			Platform:             p,
			Content:              "draft for " + string(p),
			SuggestedAspectRatio: domain.RatioLandscape,
		})
	}
	return seeds
}

func TestInstallBatchAtomicity(t *testing.T) {
	t.Parallel()

	m := newManager()

	if got := m.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty initial collection, got %d records", len(got))
	}
	if m.BatchID() != uuid.Nil {
		t.Fatal("expected nil batch id before first install")
	}

	// Dirty the state first so the replacement is observable.
	m.InstallBatch(sevenSeeds())
	ticket, err := m.BeginImage(domain.PlatformInstagram)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}
	if err := m.CompleteImage(ticket, "data:image/png;base64,old"); err != nil {
		t.Fatalf("CompleteImage: %v", err)
	}

	seeds := sevenSeeds()[:3]
	id := m.InstallBatch(seeds)
	if id == uuid.Nil || id != m.BatchID() {
		t.Fatalf("unexpected batch id %s", id)
	}

	snapshot := m.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snapshot))
	}
	for i, rec := range snapshot {
		if rec.Platform != seeds[i].Platform {
			t.Fatalf("record %d: expected platform %s, got %s", i, seeds[i].Platform, rec.Platform)
		}
		if rec.IsGeneratingImage {
			t.Fatalf("record %s: fresh record marked in-flight", rec.Platform)
		}
		if rec.ImageURL != "" {
			t.Fatalf("record %s: fresh record carries image %q", rec.Platform, rec.ImageURL)
		}
	}
}

func TestEditContentTouchesOnlyTarget(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds())
	before := m.Snapshot()

	if err := m.EditContent(domain.PlatformLinkedIn, "Updated copy"); err != nil {
		t.Fatalf("EditContent: %v", err)
	}

	after := m.Snapshot()
	for i, rec := range after {
		if rec.Platform == domain.PlatformLinkedIn {
			if rec.Content != "Updated copy" {
				t.Fatalf("LinkedIn content not updated: %q", rec.Content)
			}
			continue
		}
		if rec != before[i] {
			t.Fatalf("record %s changed: %+v vs %+v", rec.Platform, before[i], rec)
		}
	}
}

func TestEditContentUnknownPlatform(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds()[:2])

	err := m.EditContent(domain.PlatformReddit, "hello")
	if !errors.Is(err, drafts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImageLifecycleIsolation(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds())

	ticket, err := m.BeginImage(domain.PlatformInstagram)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}

	for _, rec := range m.Snapshot() {
		inFlight := rec.Platform == domain.PlatformInstagram
		if rec.IsGeneratingImage != inFlight {
			t.Fatalf("record %s: in-flight flag %v", rec.Platform, rec.IsGeneratingImage)
		}
	}

	if err := m.CompleteImage(ticket, "https://img.example/insta.png"); err != nil {
		t.Fatalf("CompleteImage: %v", err)
	}

	rec, err := m.Get(domain.PlatformInstagram)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ImageURL != "https://img.example/insta.png" || rec.IsGeneratingImage {
		t.Fatalf("unexpected record state: %+v", rec)
	}
}

func TestFailImagePreservesPriorImage(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds())

	ticket, err := m.BeginImage(domain.PlatformFacebook)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}
	if err := m.CompleteImage(ticket, "https://img.example/v1.png"); err != nil {
		t.Fatalf("CompleteImage: %v", err)
	}

	// Re-render fails: flag resets, prior image stays.
	ticket, err = m.BeginImage(domain.PlatformFacebook)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}
	if err := m.FailImage(ticket); err != nil {
		t.Fatalf("FailImage: %v", err)
	}

	rec, err := m.Get(domain.PlatformFacebook)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.IsGeneratingImage {
		t.Fatal("in-flight flag not reset after failure")
	}
	if rec.ImageURL != "https://img.example/v1.png" {
		t.Fatalf("prior image lost: %q", rec.ImageURL)
	}
}

func TestStaleTicketRejected(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds())

	ticket, err := m.BeginImage(domain.PlatformX)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}

	// Full regeneration replaces the batch while the image call is in flight.
	m.InstallBatch(sevenSeeds())

	if err := m.CompleteImage(ticket, "https://img.example/stale.png"); !errors.Is(err, drafts.ErrStaleBatch) {
		t.Fatalf("expected ErrStaleBatch, got %v", err)
	}
	if err := m.FailImage(ticket); !errors.Is(err, drafts.ErrStaleBatch) {
		t.Fatalf("expected ErrStaleBatch, got %v", err)
	}

	rec, err := m.Get(domain.PlatformX)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ImageURL != "" || rec.IsGeneratingImage {
		t.Fatalf("stale completion leaked into new batch: %+v", rec)
	}
}

func TestReTriggerKeepsInFlight(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.InstallBatch(sevenSeeds())

	first, err := m.BeginImage(domain.PlatformTikTok)
	if err != nil {
		t.Fatalf("BeginImage: %v", err)
	}
	second, err := m.BeginImage(domain.PlatformTikTok)
	if err != nil {
		t.Fatalf("second BeginImage: %v", err)
	}

	// Last resolved wins.
	if err := m.CompleteImage(first, "https://img.example/first.png"); err != nil {
		t.Fatalf("CompleteImage first: %v", err)
	}
	if err := m.CompleteImage(second, "https://img.example/second.png"); err != nil {
		t.Fatalf("CompleteImage second: %v", err)
	}

	rec, err := m.Get(domain.PlatformTikTok)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ImageURL != "https://img.example/second.png" {
		t.Fatalf("expected last resolution to win, got %q", rec.ImageURL)
	}
}
