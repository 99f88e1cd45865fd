package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/timefiles/timefiles/internal/types"
)

// InsertSuggestion persists a new RestSuggestion row.
func InsertSuggestion(ctx context.Context, q Querier, s *types.RestSuggestion) error {
	reasons, err := json.Marshal(s.Reasons)
	if err != nil {
		return err
	}
	_, execErr := q.ExecContext(ctx, `
		INSERT INTO rest_suggestions (
			id, trigger_type, task_id, focus_seconds, switch_count_30m,
			deviation_ratio, suggested_minutes, reasons, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, string(s.TriggerType), s.TaskID, s.FocusSeconds, s.SwitchCount30m,
		s.DeviationRatio, s.SuggestedMins, string(reasons), string(s.Status), s.CreatedAt)
	return wrapDBError("insert rest suggestion", execErr)
}

// PendingSuggestion returns the single pending suggestion, if any.
func PendingSuggestion(ctx context.Context, q Querier) (*types.RestSuggestion, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, trigger_type, task_id, focus_seconds, switch_count_30m,
		       deviation_ratio, suggested_minutes, reasons, status, created_at
		FROM rest_suggestions WHERE status = ? LIMIT 1
	`, string(types.SuggestionPending))
	s, err := scanSuggestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, wrapDBError("get pending suggestion", err)
	}
	return s, nil
}

// GetSuggestion loads a suggestion by id.
func GetSuggestion(ctx context.Context, q Querier, id string) (*types.RestSuggestion, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, trigger_type, task_id, focus_seconds, switch_count_30m,
		       deviation_ratio, suggested_minutes, reasons, status, created_at
		FROM rest_suggestions WHERE id = ?
	`, id)
	s, err := scanSuggestion(row)
	if err != nil {
		return nil, wrapDBError("get rest suggestion", err)
	}
	return s, nil
}

// SetSuggestionStatus transitions a suggestion to status.
func SetSuggestionStatus(ctx context.Context, q Querier, id string, status types.SuggestionStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE rest_suggestions SET status = ? WHERE id = ?`, string(status), id)
	return wrapDBError("set suggestion status", err)
}

// IgnorePendingSuggestions marks every currently pending suggestion as
// ignored; called right before inserting a new one (supersession).
func IgnorePendingSuggestions(ctx context.Context, q Querier) error {
	_, err := q.ExecContext(ctx, `
		UPDATE rest_suggestions SET status = ? WHERE status = ?
	`, string(types.SuggestionIgnored), string(types.SuggestionPending))
	return wrapDBError("ignore pending suggestions", err)
}

func scanSuggestion(row *sql.Row) (*types.RestSuggestion, error) {
	var s types.RestSuggestion
	var trigger, status, reasonsRaw string
	if err := row.Scan(&s.ID, &trigger, &s.TaskID, &s.FocusSeconds, &s.SwitchCount30m,
		&s.DeviationRatio, &s.SuggestedMins, &reasonsRaw, &status, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.TriggerType = types.SuggestionTrigger(trigger)
	s.Status = types.SuggestionStatus(status)
	if err := json.Unmarshal([]byte(reasonsRaw), &s.Reasons); err != nil {
		return nil, err
	}
	return &s, nil
}
