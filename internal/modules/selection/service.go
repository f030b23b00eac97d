package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/curve"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
	"github.com/pumplab/pumpselect/internal/modules/selection/gates"
	"github.com/pumplab/pumpselect/internal/modules/selection/methods"
	"github.com/pumplab/pumpselect/internal/modules/selection/rank"
	"github.com/pumplab/pumpselect/internal/modules/selection/scoring"
	"github.com/pumplab/pumpselect/internal/modules/selection/workers"
)

// CatalogSource supplies an immutable catalog snapshot for one evaluation.
// Implemented by the catalog service; defined here so the engine depends on
// an interface, not the storage layer.
type CatalogSource interface {
	Snapshot() ([]catalog.PumpModel, uint64, error)
}

// Service runs selection requests. Stateless between calls: every request
// holds its own immutable snapshot, duty, and config, so concurrent requests
// never share mutable engine state.
type Service struct {
	source   CatalogSource
	registry *methods.Registry
	pool     *workers.Pool
	cache    *SolveCache // nil disables memoization
	timeout  time.Duration
	log      zerolog.Logger
}

// NewService creates a selection service. numWorkers <= 0 sizes the pool to
// the available cores; cache may be nil.
func NewService(source CatalogSource, numWorkers int, timeout time.Duration,
	cache *SolveCache, log zerolog.Logger) *Service {
	return &Service{
		source:   source,
		registry: methods.NewRegistry(log),
		pool:     workers.NewPool(numWorkers),
		cache:    cache,
		timeout:  timeout,
		log:      log.With().Str("module", "selection").Logger(),
	}
}

// Select evaluates the duty against the full catalog and returns the ranked
// result. Input validation failures return ErrInvalidInput before any
// per-pump work; exceeding the time budget returns ErrTimeout with no
// partial result.
func (s *Service) Select(ctx context.Context, duty domain.DutyRequirement,
	cfg domain.EvaluationConfig) (*domain.SelectionResult, error) {
	if err := duty.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	snapshot, gen, err := s.source.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	pumps := filterByType(snapshot, duty.PumpType)

	var cfgHash uint64
	if s.cache != nil {
		if cfgHash, err = ConfigHash(&cfg); err != nil {
			return nil, fmt.Errorf("failed to fingerprint config: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	outcomes, err := s.pool.EvaluateBatch(ctx, pumps, func(p *catalog.PumpModel) workers.Outcome {
		return s.evaluatePump(p, &duty, &cfg, gen, cfgHash)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, time.Since(started).Round(time.Millisecond))
		}
		return nil, err
	}

	var candidates []domain.Candidate
	var exclusions []domain.ExclusionRecord
	for _, o := range outcomes {
		switch {
		case o.Candidate != nil:
			candidates = append(candidates, *o.Candidate)
		case o.Exclusion != nil:
			exclusions = append(exclusions, *o.Exclusion)
		}
	}

	result := &domain.SelectionResult{
		Candidates: rank.Rank(candidates, cfg.TopK),
		Exclusions: exclusions,
		Summary:    rank.Summarize(exclusions),
		NearMisses: rank.NearMisses(exclusions),
		Evaluated:  len(pumps),
	}

	s.log.Info().
		Int("evaluated", result.Evaluated).
		Int("feasible", len(candidates)).
		Int("excluded", len(exclusions)).
		Dur("elapsed", time.Since(started)).
		Msg("Selection complete")

	return result, nil
}

// evaluatePump runs the solve -> gate -> score pipeline over every curve of
// one pump. The highest-scoring gate-passing curve represents the pump; when
// none passes, the exclusion record of the first solvable curve does, then
// the first unsolvable curve, then a data-error record.
func (s *Service) evaluatePump(p *catalog.PumpModel, duty *domain.DutyRequirement,
	cfg *domain.EvaluationConfig, gen uint64, cfgHash uint64) workers.Outcome {
	var best *domain.Candidate
	var firstGateFail *domain.ExclusionRecord
	var firstNoSolution *domain.ExclusionRecord
	var firstDataError *domain.ExclusionRecord

	for ci := range p.Curves {
		c := &p.Curves[ci]
		issues := c.Validate()

		it, err := curve.NewInterpolator(c, cfg.ExtrapolationMarginPct)
		if err != nil {
			if firstDataError == nil {
				firstDataError = &domain.ExclusionRecord{
					PumpID:   p.ID,
					PumpName: p.Name,
					CurveID:  c.ID,
					Details: []domain.ExclusionDetail{{
						Reason:   domain.ReasonDataError,
						Achieved: float64(len(c.Points)),
						Required: 2,
						Issue:    err.Error(),
					}},
				}
			}
			continue
		}

		sol, solved := s.solveCurve(it, c, p.ID, duty, cfg, gen, cfgHash)
		if !solved {
			if firstNoSolution == nil {
				firstNoSolution = &domain.ExclusionRecord{
					PumpID:   p.ID,
					PumpName: p.Name,
					CurveID:  c.ID,
					Details: []domain.ExclusionDetail{{
						Reason:   domain.ReasonNoSolution,
						Required: duty.HeadM,
					}},
				}
			}
			continue
		}

		details := gates.Evaluate(&sol, c, issues, duty, cfg)
		if len(details) > 0 {
			if firstGateFail == nil {
				solCopy := sol
				firstGateFail = &domain.ExclusionRecord{
					PumpID:   p.ID,
					PumpName: p.Name,
					CurveID:  c.ID,
					Details:  details,
					Solution: &solCopy,
				}
			}
			continue
		}

		breakdown := scoring.Score(&sol, c.BEP, duty, cfg)
		candidate := domain.Candidate{
			PumpID:   p.ID,
			PumpName: p.Name,
			CurveID:  c.ID,
			QBPPct:   duty.QBP(c.BEP) * 100,
			Solution: sol,
			Score:    breakdown,
		}
		if best == nil || candidate.Score.Total > best.Score.Total {
			best = &candidate
		}
	}

	switch {
	case best != nil:
		return workers.Outcome{Candidate: best}
	case firstGateFail != nil:
		return workers.Outcome{Exclusion: firstGateFail}
	case firstNoSolution != nil:
		return workers.Outcome{Exclusion: firstNoSolution}
	case firstDataError != nil:
		return workers.Outcome{Exclusion: firstDataError}
	default:
		// Pump with no curves at all; the repository rejects these on write,
		// but an empty snapshot entry still has to terminate somewhere.
		return workers.Outcome{Exclusion: &domain.ExclusionRecord{
			PumpID:   p.ID,
			PumpName: p.Name,
			Details:  []domain.ExclusionDetail{{Reason: domain.ReasonDataError}},
		}}
	}
}

// solveCurve runs the modification solver, consulting the memo cache first.
func (s *Service) solveCurve(it *curve.Interpolator, c *catalog.PerformanceCurve, pumpID string,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig, gen uint64, cfgHash uint64) (domain.Solution, bool) {
	if s.cache == nil {
		return s.registry.Solve(it, c, duty, cfg)
	}

	key := SolveKey(pumpID, c.ID, duty, cfgHash)
	if sol, solved, found := s.cache.Get(gen, key); found {
		return sol, solved
	}

	sol, solved := s.registry.Solve(it, c, duty, cfg)
	s.cache.Put(gen, key, sol, solved)
	return sol, solved
}

// filterByType keeps pumps matching the duty's optional type filter.
func filterByType(pumps []catalog.PumpModel, t catalog.PumpType) []catalog.PumpModel {
	if t == catalog.PumpTypeUnclassified {
		return pumps
	}
	filtered := make([]catalog.PumpModel, 0, len(pumps))
	for _, p := range pumps {
		if p.Type == t {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
