package catalog

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Service provides catalog access with an in-memory snapshot.
//
// The selection engine reads a fully materialized, immutable snapshot so that
// per-pump evaluations never block on I/O. Every write goes through the
// service, reloads the snapshot, and bumps the generation counter; downstream
// caches key on the generation to invalidate themselves.
type Service struct {
	repo *Repository
	log  zerolog.Logger

	mu         sync.RWMutex
	snapshot   []PumpModel
	generation uint64
	loaded     bool
}

// NewService creates a new catalog service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("module", "catalog").Logger(),
	}
}

// Snapshot returns the current catalog snapshot and its generation.
// The returned slice and everything it references must be treated as
// read-only; the service never mutates a published snapshot.
func (s *Service) Snapshot() ([]PumpModel, uint64, error) {
	s.mu.RLock()
	if s.loaded {
		models, gen := s.snapshot, s.generation
		s.mu.RUnlock()
		return models, gen, nil
	}
	s.mu.RUnlock()

	if err := s.Refresh(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.generation, nil
}

// Refresh reloads the snapshot from the database and bumps the generation
func (s *Service) Refresh() error {
	models, err := s.repo.GetAllModels()
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	s.mu.Lock()
	s.snapshot = models
	s.generation++
	s.loaded = true
	gen := s.generation
	s.mu.Unlock()

	s.log.Info().Int("models", len(models)).Uint64("generation", gen).Msg("Catalog snapshot refreshed")
	return nil
}

// Generation returns the current snapshot generation without loading
func (s *Service) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// GetModel returns one pump model by id, or nil when not found
func (s *Service) GetModel(id string) (*PumpModel, error) {
	return s.repo.GetModel(id)
}

// SaveModel stores a pump model and refreshes the snapshot
func (s *Service) SaveModel(m *PumpModel) error {
	if err := s.repo.SaveModel(m); err != nil {
		return err
	}
	return s.Refresh()
}

// DeleteModel removes a pump model and refreshes the snapshot
func (s *Service) DeleteModel(id string) (bool, error) {
	deleted, err := s.repo.DeleteModel(id)
	if err != nil {
		return false, err
	}
	if deleted {
		if err := s.Refresh(); err != nil {
			return true, err
		}
	}
	return deleted, nil
}
