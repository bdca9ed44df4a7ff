package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/report"
)

// MemoryStore is an in-process Store with the same uniqueness and
// conditional-write rules as GormStore. Useful for tests and demos.
type MemoryStore struct {
	mu         sync.RWMutex
	players    map[string]model.Player
	reports    map[string]model.Report
	byKey      map[string]string // identity key -> player id
	byExternal map[string]string // external id -> player id
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:    make(map[string]model.Player),
		reports:    make(map[string]model.Report),
		byKey:      make(map[string]string),
		byExternal: make(map[string]string),
	}
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, p model.Player, bundled *model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ext, err := uniqueKeys(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("create player: %w", ErrConflict)
	}
	if key != nil {
		if _, ok := s.byKey[*key]; ok {
			return fmt.Errorf("create player: %w", ErrConflict)
		}
	}
	if ext != nil {
		if _, ok := s.byExternal[*ext]; ok {
			return fmt.Errorf("create player: %w", ErrConflict)
		}
	}
	if bundled != nil {
		if _, ok := s.reports[bundled.ID]; ok {
			return fmt.Errorf("create player: %w", ErrConflict)
		}
	}

	s.players[p.ID] = p
	if key != nil {
		s.byKey[*key] = p.ID
	}
	if ext != nil {
		s.byExternal[*ext] = p.ID
	}
	if bundled != nil {
		r := *bundled
		r.PlayerID = p.ID
		s.reports[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	if err := ctx.Err(); err != nil {
		return model.Player{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, fmt.Errorf("get player %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) lookup(ctx context.Context, index map[string]string, value string) (model.Player, error) {
	if err := ctx.Err(); err != nil {
		return model.Player{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := index[value]
	if !ok {
		return model.Player{}, fmt.Errorf("find player: %w", ErrNotFound)
	}
	return s.players[id], nil
}

func (s *MemoryStore) FindByIdentityKey(ctx context.Context, key string) (model.Player, error) {
	return s.lookup(ctx, s.byKey, key)
}

func (s *MemoryStore) FindByExternalID(ctx context.Context, externalID string) (model.Player, error) {
	return s.lookup(ctx, s.byExternal, externalID)
}

func (s *MemoryStore) ListPlayers(ctx context.Context, state model.LifecycleState) ([]model.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		if state == "" || p.LifecycleState == state {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) PromoteIfBookmark(ctx context.Context, playerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return false, fmt.Errorf("promote %s: %w", playerID, ErrNotFound)
	}
	if p.IsScouted() {
		return false, nil
	}
	p.LifecycleState = model.Scouted
	s.players[playerID] = p
	return true, nil
}

func (s *MemoryStore) AddReport(ctx context.Context, r model.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[r.PlayerID]; !ok {
		return fmt.Errorf("add report: player %s: %w", r.PlayerID, ErrNotFound)
	}
	if _, ok := s.reports[r.ID]; ok {
		return fmt.Errorf("add report: %w", ErrConflict)
	}
	s.reports[r.ID] = r
	return nil
}

func (s *MemoryStore) GetReport(ctx context.Context, id string) (model.Report, error) {
	if err := ctx.Err(); err != nil {
		return model.Report{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return model.Report{}, fmt.Errorf("get report %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) ListReports(ctx context.Context, playerID string) ([]model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := []model.Report{}
	for _, r := range s.reports {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReportDate.Equal(out[j].ReportDate) {
			return out[i].ReportDate.After(out[j].ReportDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteReport(ctx context.Context, id string) (model.Report, error) {
	if err := ctx.Err(); err != nil {
		return model.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return model.Report{}, fmt.Errorf("delete report %s: %w", id, ErrNotFound)
	}
	delete(s.reports, id)
	return r, nil
}

func (s *MemoryStore) AttachFeedback(ctx context.Context, reportID string, fb model.DirectorFeedback) (model.Report, error) {
	if err := ctx.Err(); err != nil {
		return model.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok {
		return model.Report{}, fmt.Errorf("attach feedback %s: %w", reportID, ErrNotFound)
	}
	if r.HasFeedback() {
		return model.Report{}, fmt.Errorf("attach feedback %s: %w", reportID, report.ErrAlreadyAttached)
	}
	r.Director = &fb
	s.reports[reportID] = r
	return r, nil
}

func (s *MemoryStore) Close() error { return nil }
