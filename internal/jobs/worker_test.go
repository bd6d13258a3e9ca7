package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	err := PingRedis(context.Background(), asynq.RedisClientOpt{Addr: addr}, time.Second)
	require.NoError(t, err)

	mr.Close()
	err = PingRedis(context.Background(), asynq.RedisClientOpt{Addr: addr}, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestNewWorker_CronInvalido(t *testing.T) {
	mr := miniredis.RunT(t)
	task, err := NewStatusSweepTask(time.Now(), "cron")
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Cron:      []CronRegistration{{Spec: "cada hora", Task: task}},
	})
	assert.Error(t, err)
}

func TestNewWorker_IgnoraRegistrosVacios(t *testing.T) {
	mr := miniredis.RunT(t)

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Handlers:  []TaskHandler{{Type: TaskStatusSweep}},
		Cron:      []CronRegistration{{Spec: "@every 1h"}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)
	assert.NotNil(t, w.mux)
}
