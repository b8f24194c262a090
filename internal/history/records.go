package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stillcast/internal/encoding"
	"stillcast/internal/ffmpeg"
	"stillcast/internal/jobspec"
	"stillcast/internal/logging"
)

var (
	// ErrNotFound indicates no job matched the requested id.
	ErrNotFound = errors.New("job not found")
	// ErrAmbiguous indicates an id prefix matched more than one job.
	ErrAmbiguous = errors.New("job id prefix is ambiguous")
)

// Record is one persisted job.
type Record struct {
	ID         string
	State      encoding.State
	Spec       jobspec.JobSpec
	Args       []string
	Progress   int
	ExitCode   *int
	Reason     encoding.Reason
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// ReplaySpec rebuilds the job spec from the recorded engine arguments.
func (r Record) ReplaySpec() (jobspec.JobSpec, error) {
	return ffmpeg.ParseArgs(r.Args)
}

const selectColumns = `id, state, image_path, audio_path, output_path, range_start, range_end,
    wobble, dim, argv_json, progress, exit_code, reason, error_message,
    created_at, updated_at, finished_at`

// Apply persists one controller event.
func (s *Store) Apply(ctx context.Context, event encoding.Event) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	ts := timestamp.UTC().Format(time.RFC3339Nano)

	switch {
	case event.Type == encoding.EventSubmitted:
		argv, err := json.Marshal(event.Args)
		if err != nil {
			return fmt.Errorf("marshal argv: %w", err)
		}
		_, err = s.exec(ctx,
			`INSERT INTO jobs (
                id, state, image_path, audio_path, output_path, range_start, range_end,
                wobble, dim, argv_json, progress, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			event.JobID,
			string(event.State),
			event.Spec.ImagePath,
			event.Spec.AudioPath,
			event.Spec.OutputPath,
			event.Spec.Range.Start,
			event.Spec.Range.End,
			boolToInt(event.Spec.Wobble),
			boolToInt(event.Spec.Dim),
			string(argv),
			ts,
			ts,
		)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		return nil

	case event.Type == encoding.EventProgress:
		if !s.shouldPersistProgress(event.JobID, timestamp) {
			return nil
		}
		if _, err := s.exec(ctx,
			`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
			event.Percent, ts, event.JobID,
		); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		return nil

	case event.Type.Terminal():
		s.mu.Lock()
		delete(s.lastProgress, event.JobID)
		s.mu.Unlock()
		var message any
		if event.Err != nil {
			message = event.Err.Error()
		}
		res, err := s.exec(ctx,
			`UPDATE jobs SET state = ?, progress = ?, exit_code = ?, reason = ?, error_message = ?,
                updated_at = ?, finished_at = ?
            WHERE id = ?`,
			string(event.State), event.Percent, event.ExitCode, nullableString(string(event.Reason)), message,
			ts, ts, event.JobID,
		)
		if err != nil {
			return fmt.Errorf("finish job: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("finish job %s: %w", event.JobID, ErrNotFound)
		}
		return nil
	}
	return nil
}

// Sink adapts the store into a controller sink. Persistence failures are
// logged; they never interrupt the job.
func (s *Store) Sink(ctx context.Context) encoding.Sink {
	return func(event encoding.Event) {
		if err := s.Apply(ctx, event); err != nil {
			logging.WarnWithContext(s.logger, "failed to record job event", "history_write_failed",
				logging.String(logging.FieldJobID, event.JobID),
				logging.String("event", string(event.Type)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on "+s.path),
				logging.String(logging.FieldImpact, "job history is incomplete"),
			)
		}
	}
}

func (s *Store) shouldPersistProgress(jobID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastProgress[jobID]
	if ok && now.Sub(last) < progressPersistInterval {
		return false
	}
	s.lastProgress[jobID] = now
	return true
}

// List returns the most recent jobs first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + selectColumns + ` FROM jobs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get returns the job whose id equals or starts with idPrefix.
func (s *Store) Get(ctx context.Context, idPrefix string) (Record, error) {
	ctx = ensureContext(ctx)
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return Record{}, ErrNotFound
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idPrefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM jobs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		idPrefix, escaped+"%",
	)
	if err != nil {
		return Record{}, fmt.Errorf("get job: %w", err)
	}
	defer rows.Close()

	var matches []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return Record{}, err
		}
		if record.ID == idPrefix {
			return record, nil
		}
		matches = append(matches, record)
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}
	switch len(matches) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Record{}, fmt.Errorf("%w: %s", ErrAmbiguous, idPrefix)
	}
}

// Prune deletes finished jobs older than cutoff and reports how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`DELETE FROM jobs WHERE finished_at IS NOT NULL AND finished_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record     Record
		state      string
		wobble     int
		dim        int
		argvJSON   string
		exitCode   sql.NullInt64
		reason     sql.NullString
		message    sql.NullString
		createdAt  string
		updatedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&record.ID, &state,
		&record.Spec.ImagePath, &record.Spec.AudioPath, &record.Spec.OutputPath,
		&record.Spec.Range.Start, &record.Spec.Range.End,
		&wobble, &dim, &argvJSON, &record.Progress,
		&exitCode, &reason, &message,
		&createdAt, &updatedAt, &finishedAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan job: %w", err)
	}
	record.State = encoding.State(state)
	record.Spec.Wobble = wobble != 0
	record.Spec.Dim = dim != 0
	if err := json.Unmarshal([]byte(argvJSON), &record.Args); err != nil {
		return Record{}, fmt.Errorf("decode argv for %s: %w", record.ID, err)
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		record.ExitCode = &code
	}
	record.Reason = encoding.Reason(reason.String)
	record.Error = message.String
	record.CreatedAt = parseTime(createdAt)
	record.UpdatedAt = parseTime(updatedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		record.FinishedAt = &t
	}
	return record, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
