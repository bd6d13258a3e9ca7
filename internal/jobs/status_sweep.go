package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-lab/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

// Sweeper una pasada del barrido de estados.
type Sweeper interface {
	Run(ctx context.Context) (int, error)
}

// StatusSweepJob handler asynq del barrido de estados.
type StatusSweepJob struct {
	sweeper Sweeper
	log     *logger.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
}

// NewStatusSweepJob inicializa el handler. log y m pueden ser nil.
func NewStatusSweepJob(sweeper Sweeper, log *logger.Logger, m *metrics.Metrics) *StatusSweepJob {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusSweepJob{
		sweeper: sweeper,
		log:     log.Component("status_sweep_job"),
		metrics: m,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle ejecuta el barrido. Un payload ilegible no se reintenta.
func (j *StatusSweepJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.sweeper == nil {
		return errors.New("status sweep: handler no configurado")
	}
	var payload StatusSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("status sweep payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics.Track(TaskStatusSweep)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.clock()
	changed, err := j.sweeper.Run(ctx)
	if err != nil {
		j.log.Error().Err(err).Str("trigger", payload.Trigger).Msg("barrido de estados fallido")
		return err
	}
	j.log.Info().
		Int("changed", changed).
		Str("trigger", payload.Trigger).
		Dur("elapsed", j.clock().Sub(start)).
		Msg("barrido de estados")
	return nil
}
