package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// Kind is the protocol event type
type Kind string

const (
	KindAsk    Kind = "ask"
	KindReport Kind = "report"
	KindTell   Kind = "tell"
)

// Event is one protocol step of a run. Step and Value are set for reports,
// State and Depth for tells.
type Event struct {
	Seq   int
	Kind  Kind
	Trial int
	Step  int
	State models.TrialState
	Value float64
	Depth int
}

func (e Event) columns() (step, state, value, depth any) {
	switch e.Kind {
	case KindReport:
		return e.Step, nil, e.Value, nil
	case KindTell:
		return nil, string(e.State), nil, e.Depth
	default:
		return nil, nil, nil, nil
	}
}

func (s *Store) writeRun(generationID, scenario string, seed int, events []Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO protocol_events (generation_id, scenario, seed, seq, kind, trial, step, state, value, depth, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, e := range events {
		step, state, value, depth := e.columns()
		if _, err := stmt.Exec(generationID, scenario, seed, e.Seq, string(e.Kind), e.Trial, step, state, value, depth, now); err != nil {
			return fmt.Errorf("insert %s event %d: %w", e.Kind, e.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Events returns a run's events in protocol order
func (s *Store) Events(generationID, scenario string, seed int) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, kind, trial, step, state, value, depth FROM protocol_events
		 WHERE generation_id = ? AND scenario = ? AND seed = ?
		 ORDER BY seq ASC`,
		generationID, scenario, seed,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var kind string
		var step, depth sql.NullInt64
		var state sql.NullString
		var value sql.NullFloat64
		if err := rows.Scan(&e.Seq, &kind, &e.Trial, &step, &state, &value, &depth); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = Kind(kind)
		e.Step = int(step.Int64)
		e.State = models.TrialState(state.String)
		e.Value = value.Float64
		e.Depth = int(depth.Int64)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// TellOrder returns a run's trial numbers in the order they were told
func (s *Store) TellOrder(generationID, scenario string, seed int) ([]int, error) {
	rows, err := s.db.Query(
		`SELECT trial FROM protocol_events
		 WHERE generation_id = ? AND scenario = ? AND seed = ? AND kind = ?
		 ORDER BY seq ASC`,
		generationID, scenario, seed, string(KindTell),
	)
	if err != nil {
		return nil, fmt.Errorf("query tell order: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tell order: %w", err)
	}
	return out, nil
}
