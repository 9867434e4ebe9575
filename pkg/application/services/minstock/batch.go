package minstock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
)

const (
	DefaultChunkSize = 500
	DefaultFanOut    = 50
)

// PipelineConfig tunes the batch recomputation
type PipelineConfig struct {
	ChunkSize int
	FanOut    int
	ErrorCap  int
}

// DefaultPipelineConfig returns the standard chunking and fan-out
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize: DefaultChunkSize,
		FanOut:    DefaultFanOut,
		ErrorCap:  DefaultErrorCap,
	}
}

// Pipeline recomputes minimum stock for every recently sold product at every destination as
// a single background job
type Pipeline struct {
	calc   *Calculator
	config PipelineConfig
	state  *JobState

	mu      sync.Mutex
	current *jobRun // latest started job
}

// jobRun tracks one started job; final is written before done is closed
type jobRun struct {
	done  chan struct{}
	final JobStatus
}

// NewPipeline creates a batch pipeline on top of a calculator
func NewPipeline(calc *Calculator, config PipelineConfig) *Pipeline {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.FanOut <= 0 {
		config.FanOut = DefaultFanOut
	}
	return &Pipeline{
		calc:   calc,
		config: config,
		state:  NewJobState(calc.clock, config.ErrorCap),
	}
}

// Start launches the job in the background and returns immediately. When a job is already
// running it returns that job's status and false.
func (p *Pipeline) Start(ctx context.Context) (JobStatus, bool) {
	p.mu.Lock()
	status, started := p.state.TryStart(uuid.NewString())
	if !started {
		p.mu.Unlock()
		p.calc.logger.Info().Str("job_id", status.ID).Msg("batch already running")
		return status, false
	}
	run := &jobRun{done: make(chan struct{})}
	p.current = run
	p.mu.Unlock()

	go func() {
		defer close(run.done)
		defer func() { run.final = p.state.Snapshot() }()
		p.run(context.WithoutCancel(ctx), status.ID)
	}()
	return status, true
}

// Wait blocks until the most recently started job finishes or ctx ends. On success it
// returns the final status of the job it waited for.
func (p *Pipeline) Wait(ctx context.Context) (JobStatus, error) {
	p.mu.Lock()
	run := p.current
	p.mu.Unlock()

	if run == nil {
		return p.state.Snapshot(), nil
	}
	select {
	case <-run.done:
		return run.final, nil
	case <-ctx.Done():
		return p.state.Snapshot(), ctx.Err()
	}
}

// Status returns the current job status
func (p *Pipeline) Status() JobStatus {
	return p.state.Snapshot()
}

type pending struct {
	key    shared.PairKey
	record *entities.MinimumStockRecord
	entry  *entities.MinimumStockHistoryEntry
}

// run executes one job. Setup failures and panics end the job in the error phase.
func (p *Pipeline) run(ctx context.Context, jobID string) {
	log := p.calc.logger.With().Str("job_id", jobID).Logger()
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("batch job panicked: %v", r)
			log.Error().Err(err).Msg("batch failed")
			p.state.Fail(err)
			p.calc.publish(ctx, events.NewBatchFailed(jobID, err))
		}
	}()

	fail := func(err error) {
		log.Error().Err(err).Msg("batch failed")
		p.state.Fail(err)
		p.calc.publish(ctx, events.NewBatchFailed(jobID, err))
	}

	now := p.calc.clock()
	since, _ := shared.DayWindow(now, HistoryWindowDays, 0)
	candidates, err := p.calc.sales.ProductsSoldSince(ctx, since)
	if err != nil {
		fail(fmt.Errorf("failed to list candidate products: %w", err))
		return
	}

	destinations := p.calc.network.Destinations()
	tables, priors, err := p.loadTables(ctx, destinations, now)
	if err != nil {
		fail(err)
		return
	}

	total := len(candidates) * len(destinations)
	p.state.SetTotal(total)
	p.calc.publish(ctx, events.NewBatchStarted(jobID, len(candidates)))
	log.Info().Int("candidates", len(candidates)).Int("pairs", total).Msg("batch started")

	for offset := 0; offset < len(candidates); offset += p.config.ChunkSize {
		limit := offset + p.config.ChunkSize
		if limit > len(candidates) {
			limit = len(candidates)
		}

		items, failed := p.computeChunk(candidates[offset:limit], destinations, tables, priors, now)
		succeeded, persistFailed := p.persist(ctx, items)
		failed = append(failed, persistFailed...)
		p.state.Record(succeeded, failed)

		status := p.state.Snapshot()
		log.Debug().
			Int("processed", status.Processed).
			Int("failed", status.Failed).
			Dur("eta", status.ETA).
			Msg("batch chunk done")
	}

	p.state.Complete()
	status := p.state.Snapshot()
	p.calc.publish(ctx, events.NewBatchCompleted(jobID, status.Processed, status.Succeeded, status.Failed))
	log.Info().
		Int("processed", status.Processed).
		Int("succeeded", status.Succeeded).
		Int("failed", status.Failed).
		Dur("elapsed", time.Since(started)).
		Msg("batch completed")
}

// loadTables runs the bulk scans of every destination once
func (p *Pipeline) loadTables(
	ctx context.Context,
	destinations []entities.Branch,
	now time.Time,
) (map[entities.BranchID]*branchSales, shared.PairTable[*entities.MinimumStockRecord], error) {
	tables := make(map[entities.BranchID]*branchSales, len(destinations))
	priors := shared.NewPairTable[*entities.MinimumStockRecord](0)

	for _, branch := range destinations {
		sales, err := p.calc.loadBranchSales(ctx, branch.ID, now)
		if err != nil {
			return nil, priors, err
		}
		tables[branch.ID] = sales

		records, err := p.calc.store.ListByBranch(ctx, branch.ID)
		if err != nil {
			return nil, priors, fmt.Errorf("failed to list minimum stock at %s: %w", branch.ID, err)
		}
		for product, rec := range records {
			priors.Set(product, branch.ID, rec)
		}
	}
	return tables, priors, nil
}

// computeChunk builds every record of a chunk from the in-memory tables
func (p *Pipeline) computeChunk(
	products []entities.ProductID,
	destinations []entities.Branch,
	tables map[entities.BranchID]*branchSales,
	priors shared.PairTable[*entities.MinimumStockRecord],
	now time.Time,
) ([]pending, []string) {
	items := make([]pending, 0, len(products)*len(destinations))
	var failed []string

	for _, product := range products {
		for _, branch := range destinations {
			key := shared.PairKey{Product: product, Branch: branch.ID}
			item, err := p.computeOne(key, tables[branch.ID], priors.Get(product, branch.ID), now)
			if err != nil {
				p.calc.logger.Warn().Err(err).Str("item", key.String()).Msg("batch item failed")
				failed = append(failed, key.String())
				continue
			}
			items = append(items, item)
		}
	}
	return items, failed
}

func (p *Pipeline) computeOne(
	key shared.PairKey,
	tables *branchSales,
	prior *entities.MinimumStockRecord,
	now time.Time,
) (item pending, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("computation panicked: %v", r)
		}
	}()

	record, entry := p.calc.buildRecord(key.Product, key.Branch, tables.inputs(key.Product, now.Month()), prior, now)
	return pending{key: key, record: record, entry: entry}, nil
}

// persist upserts a sub-batch with bounded parallelism. Failures are per item.
func (p *Pipeline) persist(ctx context.Context, items []pending) (int, []string) {
	outcomes := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(p.config.FanOut)
	for i := range items {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = fmt.Errorf("save panicked: %v", r)
				}
			}()
			outcomes[i] = p.calc.store.Save(ctx, items[i].record, items[i].entry)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	var failed []string
	for i, err := range outcomes {
		if err != nil {
			p.calc.logger.Warn().Err(err).Str("item", items[i].key.String()).Msg("batch save failed")
			failed = append(failed, items[i].key.String())
			continue
		}
		succeeded++
	}
	return succeeded, failed
}
