package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto de las tareas en segundo plano.
	QueueDefault = "default"
	// TaskStatusSweep re-evalúa los estados que dependen de la fecha.
	TaskStatusSweep = "inventory:status-sweep"
)

// StatusSweepPayload metadatos de programación del barrido.
type StatusSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	Trigger      string    `json:"trigger"` // cron | manual
}

// NewStatusSweepTask construye la tarea del barrido.
func NewStatusSweepTask(at time.Time, trigger string) (*asynq.Task, error) {
	body, err := json.Marshal(StatusSweepPayload{ScheduledFor: at, Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatusSweep, body, asynq.Queue(QueueDefault)), nil
}
