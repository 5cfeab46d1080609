package draftsimpl

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/drafts"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Logger logger.Logger
}

// ManagerImpl keys records by platform for O(1) mutation and keeps the seed
// order for snapshots. A single mutex guards everything; record-scoped
// operations copy in and out so no caller ever holds an alias into the map.
type ManagerImpl struct {
	mu      sync.RWMutex
	batchID uuid.UUID
	order   []domain.Platform
	records map[domain.Platform]*domain.DraftRecord
	logger  logger.Logger
}

func New(opts Opts) *ManagerImpl {
	return &ManagerImpl{
		records: make(map[domain.Platform]*domain.DraftRecord),
		logger:  opts.Logger,
	}
}

var _ drafts.Manager = (*ManagerImpl)(nil)

func (m *ManagerImpl) InstallBatch(seeds []domain.DraftSeed) uuid.UUID {
	records := make(map[domain.Platform]*domain.DraftRecord, len(seeds))
	order := make([]domain.Platform, 0, len(seeds))
	for _, seed := range seeds {
		records[seed.Platform] = &domain.DraftRecord{
			Platform:             seed.Platform,
			Content:              seed.Content,
			SuggestedAspectRatio: seed.SuggestedAspectRatio,
		}
		order = append(order, seed.Platform)
	}

	id := uuid.New()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchID = id
	m.order = order
	m.records = records

	m.logger.Info("Installed draft batch", "batch_id", id, "drafts", len(order))
	return id
}

func (m *ManagerImpl) BatchID() uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.batchID
}

func (m *ManagerImpl) Snapshot() []domain.DraftRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.DraftRecord, 0, len(m.order))
	for _, platform := range m.order {
		out = append(out, *m.records[platform])
	}
	return out
}

func (m *ManagerImpl) Get(platform domain.Platform) (domain.DraftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[platform]
	if !ok {
		return domain.DraftRecord{}, fmt.Errorf("%w: %s", drafts.ErrNotFound, platform)
	}
	return *rec, nil
}

func (m *ManagerImpl) EditContent(platform domain.Platform, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[platform]
	if !ok {
		return fmt.Errorf("%w: %s", drafts.ErrNotFound, platform)
	}
	rec.Content = content
	return nil
}

func (m *ManagerImpl) BeginImage(platform domain.Platform) (drafts.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[platform]
	if !ok {
		return drafts.Ticket{}, fmt.Errorf("%w: %s", drafts.ErrNotFound, platform)
	}
	rec.IsGeneratingImage = true
	return drafts.Ticket{BatchID: m.batchID, Platform: platform}, nil
}

func (m *ManagerImpl) CompleteImage(t drafts.Ticket, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.live(t)
	if err != nil {
		return err
	}
	rec.ImageURL = imageURL
	rec.IsGeneratingImage = false
	return nil
}

func (m *ManagerImpl) FailImage(t drafts.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.live(t)
	if err != nil {
		return err
	}
	rec.IsGeneratingImage = false
	return nil
}

// live resolves a ticket against the current collection. Callers hold the
// write lock.
func (m *ManagerImpl) live(t drafts.Ticket) (*domain.DraftRecord, error) {
	if t.BatchID != m.batchID {
		return nil, fmt.Errorf("%w: platform %s", drafts.ErrStaleBatch, t.Platform)
	}
	rec, ok := m.records[t.Platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", drafts.ErrNotFound, t.Platform)
	}
	return rec, nil
}
