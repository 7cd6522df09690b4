package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"plug-market-bot/internal/features/giveaway/models"
	"plug-market-bot/internal/features/giveaway/repository"
)

// fileRepository keeps the whole record set in memory and rewrites one JSON
// file on every mutation. A missing file means an empty store; a crash loses
// at most the mutation that had not been flushed yet.
type fileRepository struct {
	mu      sync.RWMutex
	path    string
	records map[string]*models.Giveaway
}

func NewFileGiveawayRepository(path string) (repository.GiveawayRepository, error) {
	r := &fileRepository{
		path:    path,
		records: make(map[string]*models.Giveaway),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileRepository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read giveaway store: %w", err)
	}

	var records map[string]*models.Giveaway
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse giveaway store: %w", err)
	}
	if records != nil {
		r.records = records
	}
	return nil
}

// flush rewrites the file atomically: write a sibling temp file, then rename.
// Caller must hold at least a read lock.
func (r *fileRepository) flush() error {
	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway store: %w", err)
	}

	tmp := r.path + ".tmp"
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write giveaway store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace giveaway store: %w", err)
	}
	return nil
}

func (r *fileRepository) Save(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *g
	cp.Entrants = append([]string(nil), g.Entrants...)
	r.records[g.ID] = &cp
	return r.flush()
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.records[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	cp := *g
	cp.Entrants = append([]string(nil), g.Entrants...)
	return &cp, nil
}

func (r *fileRepository) All(ctx context.Context) ([]*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Giveaway, 0, len(r.records))
	for _, g := range r.records {
		cp := *g
		cp.Entrants = append([]string(nil), g.Entrants...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return repository.ErrGiveawayNotFound
	}
	delete(r.records, id)
	return r.flush()
}
