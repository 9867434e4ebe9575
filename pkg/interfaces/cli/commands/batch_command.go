package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/minstock"
)

// BatchConfig holds configuration for the batch command
type BatchConfig struct {
	Progress time.Duration // interval between progress log lines, 0 disables them
}

// BatchCommand recomputes minimum stock for every recently sold product
type BatchCommand struct {
	rt     *Runtime
	config BatchConfig
}

// NewBatchCommand creates a new batch command
func NewBatchCommand(rt *Runtime, config BatchConfig) *BatchCommand {
	return &BatchCommand{rt: rt, config: config}
}

// Execute runs the batch job to completion
func (c *BatchCommand) Execute(ctx context.Context) error {
	network, err := c.rt.Network()
	if err != nil {
		return err
	}
	stores, err := c.rt.OpenStores(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	publisher, closePublisher, err := c.rt.OpenPublisher()
	if err != nil {
		return err
	}
	defer closePublisher()

	pipeline := minstock.NewPipeline(c.rt.calculator(stores, network, publisher), minstock.PipelineConfig{
		ChunkSize: c.rt.Config.BatchChunkSize,
		FanOut:    c.rt.Config.BatchFanOut,
		ErrorCap:  minstock.DefaultErrorCap,
	})
	if _, started := pipeline.Start(ctx); !started {
		return fmt.Errorf("a batch job is already running")
	}

	status, err := c.wait(ctx, pipeline)
	if err != nil {
		return err
	}
	if err := c.rt.writer().JobStatus(status); err != nil {
		return err
	}
	if status.Phase == minstock.PhaseError {
		return fmt.Errorf("batch job failed: %s", status.ErrorMessage)
	}
	return nil
}

func (c *BatchCommand) wait(ctx context.Context, pipeline *minstock.Pipeline) (minstock.JobStatus, error) {
	if c.config.Progress <= 0 {
		return pipeline.Wait(ctx)
	}

	for {
		waitCtx, cancel := context.WithTimeout(ctx, c.config.Progress)
		status, err := pipeline.Wait(waitCtx)
		cancel()
		if err == nil {
			return status, nil
		}
		if ctx.Err() != nil {
			return status, ctx.Err()
		}

		c.rt.Logger.Info().
			Str("job_id", status.ID).
			Str("processed", humanize.Comma(int64(status.Processed))).
			Str("total", humanize.Comma(int64(status.Total))).
			Int("failed", status.Failed).
			Dur("eta", status.ETA).
			Msg("batch progress")
	}
}
