package dispatch

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"hookwatch/internal/platform/models"
)

type TriggerMatcher interface {
	ListActiveByType(projectID, eventType string) ([]*models.Trigger, error)
}

type LogWriter interface {
	Append(entry *models.DispatchLog) error
}

// Result is the per-trigger outcome reported back to GitHub.
type Result struct {
	EventID string `json:"event_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Dispatcher struct {
	triggers TriggerMatcher
	logs     LogWriter
}

func NewDispatcher(triggers TriggerMatcher, logs LogWriter) *Dispatcher {
	return &Dispatcher{triggers: triggers, logs: logs}
}

// Dispatch matches the project's active triggers for the canonical event
// type and processes each match independently, one dispatch log row per
// trigger. Matched triggers run concurrently; all are joined before
// returning and no trigger's failure affects a sibling. Zero matches
// returns (nil, nil) and writes nothing.
//
// An error return means the match query itself failed; no log rows exist
// in that case.
func (d *Dispatcher) Dispatch(projectID, eventType string, payload json.RawMessage) ([]Result, error) {
	triggers, err := d.triggers.ListActiveByType(projectID, eventType)
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return nil, nil
	}

	results := make([]Result, len(triggers))
	var wg sync.WaitGroup
	for i, trigger := range triggers {
		wg.Add(1)
		go func(i int, trigger *models.Trigger) {
			defer wg.Done()
			results[i] = d.process(trigger, payload)
		}(i, trigger)
	}
	wg.Wait()

	return results, nil
}

func (d *Dispatcher) process(trigger *models.Trigger, payload json.RawMessage) Result {
	// Execution of the configured file is recorded only; spawning it is a
	// separate subsystem.
	log.Info().
		Str("trigger_id", trigger.ID).
		Str("event_type", trigger.EventType).
		Str("code_file_path", trigger.CodeFilePath).
		Msg("would execute trigger file")

	entry := &models.DispatchLog{
		EventID: trigger.ID,
		Payload: payload,
		Status:  models.DispatchStatusSuccess,
	}
	if err := d.logs.Append(entry); err != nil {
		log.Error().Err(err).Str("trigger_id", trigger.ID).Msg("dispatch log write failed")

		// Best effort: record the failure as its own error row.
		errEntry := &models.DispatchLog{
			EventID:      trigger.ID,
			Payload:      payload,
			Status:       models.DispatchStatusError,
			ErrorMessage: err.Error(),
		}
		if logErr := d.logs.Append(errEntry); logErr != nil {
			log.Error().Err(logErr).Str("trigger_id", trigger.ID).Msg("error log write failed")
		}

		return Result{EventID: trigger.ID, Success: false, Error: err.Error()}
	}

	return Result{EventID: trigger.ID, Success: true}
}
