package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fiscal-reconstruction-service/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// small single-process deployments; semantics here are the reference
// for other implementations.
type MemoryStore struct {
	mu sync.RWMutex

	properties map[string]*models.Property
	contracts  map[string]*models.Contract
	documents  map[string]*models.Document

	// keyed on propertyID, then exercise year
	summaries map[string]map[int]*models.FiscalSummary
	// keyed on propertyID, ordered by origin year
	carryForwards map[string][]*models.CarryForward
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties:    make(map[string]*models.Property),
		contracts:     make(map[string]*models.Contract),
		documents:     make(map[string]*models.Document),
		summaries:     make(map[string]map[int]*models.FiscalSummary),
		carryForwards: make(map[string][]*models.CarryForward),
	}
}

// AddProperty stores a property, assigning an ID when it has none
func (s *MemoryStore) AddProperty(p *models.Property) *models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.properties[p.ID] = p
	return p
}

// AddContract stores a contract, assigning an ID when it has none
func (s *MemoryStore) AddContract(c *models.Contract) *models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.contracts[c.ID] = c
	return c
}

// AddDocument stores a document, assigning an ID when it has none
func (s *MemoryStore) AddDocument(d *models.Document) *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.documents[d.ID] = d
	return d
}

// GetProperty returns the property with the given ID, or ErrNotFound
func (s *MemoryStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// GetAllProperties returns all properties sorted by ID for deterministic iteration
func (s *MemoryStore) GetAllProperties(ctx context.Context) ([]*models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetAllContracts returns all contracts sorted by ID
func (s *MemoryStore) GetAllContracts(ctx context.Context) ([]*models.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetAllDocuments returns all documents sorted by ID
func (s *MemoryStore) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetFiscalSummaries returns a property's summaries ordered by exercise year
func (s *MemoryStore) GetFiscalSummaries(ctx context.Context, propertyID string) ([]*models.FiscalSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	byYear := s.summaries[propertyID]
	out := make([]*models.FiscalSummary, 0, len(byYear))
	for _, fs := range byYear {
		out = append(out, fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseYear < out[j].ExerciseYear })
	return out, nil
}

// SaveFiscalSummary upserts the summary for (property, exercise year)
func (s *MemoryStore) SaveFiscalSummary(ctx context.Context, summary *models.FiscalSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("fiscal summary cannot be nil")
	}
	if summary.PropertyID == "" {
		return fmt.Errorf("fiscal summary property ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byYear, ok := s.summaries[summary.PropertyID]
	if !ok {
		byYear = make(map[int]*models.FiscalSummary)
		s.summaries[summary.PropertyID] = byYear
	}
	byYear[summary.ExerciseYear] = summary
	return nil
}

// GetCarryForwards returns a property's carryforward chain ordered by origin year
func (s *MemoryStore) GetCarryForwards(ctx context.Context, propertyID string) ([]*models.CarryForward, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.carryForwards[propertyID]
	out := make([]*models.CarryForward, len(chain))
	copy(out, chain)
	return out, nil
}

// ReplaceCarryForwards replaces a property's carryforward chain wholesale
func (s *MemoryStore) ReplaceCarryForwards(ctx context.Context, propertyID string, chain []*models.CarryForward) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if propertyID == "" {
		return fmt.Errorf("property ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*models.CarryForward, len(chain))
	copy(replacement, chain)
	sort.Slice(replacement, func(i, j int) bool { return replacement[i].OriginYear < replacement[j].OriginYear })
	s.carryForwards[propertyID] = replacement
	return nil
}
