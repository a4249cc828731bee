package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/google/uuid"
)

// IPORepository is the persistence collaborator that supplies raw records.
// GetIPOByID returns nil, nil when the record does not exist.
type IPORepository interface {
	ListIPOs(ctx context.Context) ([]models.IPO, error)
	GetIPOByID(ctx context.Context, id uuid.UUID) (*models.IPO, error)
	CreateIPO(ctx context.Context, ipo *models.IPO) error
}

// MemoryIPORepository keeps records in process memory. It backs the service
// when no database is configured, and the tests.
type MemoryIPORepository struct {
	mutex   sync.RWMutex
	records map[uuid.UUID]models.IPO
}

func NewMemoryIPORepository(seed ...models.IPO) *MemoryIPORepository {
	repo := &MemoryIPORepository{records: make(map[uuid.UUID]models.IPO)}
	for _, ipo := range seed {
		if ipo.ID == uuid.Nil {
			ipo.ID = uuid.New()
		}
		repo.records[ipo.ID] = ipo
	}
	return repo
}

// ListIPOs returns records ordered by stock id.
func (r *MemoryIPORepository) ListIPOs(ctx context.Context) ([]models.IPO, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ipos := make([]models.IPO, 0, len(r.records))
	for _, ipo := range r.records {
		ipos = append(ipos, ipo)
	}
	sort.Slice(ipos, func(i, j int) bool { return ipos[i].StockID < ipos[j].StockID })
	return ipos, nil
}

func (r *MemoryIPORepository) GetIPOByID(ctx context.Context, id uuid.UUID) (*models.IPO, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ipo, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &ipo, nil
}

func (r *MemoryIPORepository) CreateIPO(ctx context.Context, ipo *models.IPO) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if ipo.ID == uuid.Nil {
		ipo.ID = uuid.New()
	}
	for _, existing := range r.records {
		if existing.ID == ipo.ID || (ipo.StockID != "" && existing.StockID == ipo.StockID) {
			return shared.NewServiceError(
				shared.ErrorCategoryConflict,
				"DUPLICATE_IPO",
				"ipo with the same id or stock id already exists",
				"memory-repository",
				"create_ipo",
				false,
				nil,
			)
		}
	}

	now := time.Now()
	ipo.CreatedAt = now
	ipo.UpdatedAt = now
	r.records[ipo.ID] = *ipo
	return nil
}
