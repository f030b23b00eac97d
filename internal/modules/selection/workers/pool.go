// Package workers provides a worker pool for parallel per-pump evaluation.
//
// Pump evaluations are embarrassingly parallel: each one reads only the
// immutable catalog snapshot, duty, and config, and produces an independent
// outcome. The pool distributes pumps across goroutines and reassembles the
// outcomes in input order so results stay deterministic.
package workers

import (
	"context"
	"runtime"
	"sync"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Outcome is the terminal state of one pump's evaluation: exactly one of
// Candidate or Exclusion is set.
type Outcome struct {
	Candidate *domain.Candidate
	Exclusion *domain.ExclusionRecord
}

// EvalFunc evaluates a single pump model against the request's duty/config.
type EvalFunc func(pump *catalog.PumpModel) Outcome

// Pool manages a pool of worker goroutines for parallel pump evaluation
type Pool struct {
	numWorkers int
}

// NewPool creates a new worker pool. Non-positive sizes default to the
// number of CPUs.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{numWorkers: numWorkers}
}

// EvaluateBatch evaluates all pumps in parallel and returns outcomes in the
// same order as the input. When the context is cancelled the batch is
// abandoned: partially completed evaluations are discarded (each is
// independently pure, so nothing is corrupted) and the context error is
// returned instead of an inconsistent partial result.
func (p *Pool) EvaluateBatch(ctx context.Context, pumps []catalog.PumpModel, eval EvalFunc) ([]Outcome, error) {
	numPumps := len(pumps)
	if numPumps == 0 {
		return []Outcome{}, nil
	}

	jobs := make(chan int, numPumps)
	results := make(chan indexedOutcome, numPumps)

	numActualWorkers := p.numWorkers
	if numPumps < numActualWorkers {
		numActualWorkers = numPumps
	}

	var wg sync.WaitGroup
	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- indexedOutcome{index: idx, outcome: eval(&pumps[idx])}
			}
		}()
	}

	for i := range pumps {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, numPumps)
	received := 0
	for r := range results {
		outcomes[r.index] = r.outcome
		received++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != numPumps {
		// Workers bailed out without a recorded context error; treat as
		// cancellation all the same.
		return nil, context.Canceled
	}

	return outcomes, nil
}

// indexedOutcome pairs an outcome with its input position
type indexedOutcome struct {
	index   int
	outcome Outcome
}
