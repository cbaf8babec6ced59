package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"nursery-care-log/internal/domain/actions"
)

const uniqueViolation = "23505"

type ActionStore struct {
	db *sql.DB
}

func NewActionStore(db *sql.DB) *ActionStore {
	return &ActionStore{db: db}
}

const selectColumns = `
		SELECT
			id, child_id, nursery_id, kind,
			start_agent_id, completed_agent_id, comment,
			payload, created_at, updated_at
		FROM care_actions`

func (s *ActionStore) Insert(ctx context.Context, a actions.Action, slot string) error {
	payload, err := actions.MarshalPayload(a)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO care_actions (
			id, child_id, nursery_id, kind,
			start_agent_id, completed_agent_id, comment,
			start_time, end_time, open_slot,
			payload, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		a.ID,
		a.ChildID,
		a.NurseryID,
		string(a.Kind),
		a.StartAgentID,
		a.CompletedAgentID,
		a.Comment,
		a.StartTime(),
		toNullTime(a.EndTime()),
		sql.NullString{String: slot, Valid: slot != ""},
		payload,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapError(err)
}

func (s *ActionStore) Replace(ctx context.Context, a actions.Action) error {
	payload, err := actions.MarshalPayload(a)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE care_actions
		SET
			start_agent_id = $2,
			completed_agent_id = $3,
			comment = $4,
			start_time = $5,
			end_time = $6,
			payload = $7,
			updated_at = $8
		WHERE id = $1
	`,
		a.ID,
		a.StartAgentID,
		a.CompletedAgentID,
		a.Comment,
		a.StartTime(),
		toNullTime(a.EndTime()),
		payload,
		a.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return actions.ErrNotFound
	}
	return nil
}

func (s *ActionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM care_actions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return actions.ErrNotFound
	}
	return nil
}

func (s *ActionStore) GetByID(ctx context.Context, id string) (actions.Action, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return actions.Action{}, actions.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return actions.Action{}, actions.ErrNotFound
	}
	return a, err
}

func (s *ActionStore) List(ctx context.Context, filter actions.Filter) ([]actions.Action, error) {
	sb := strings.Builder{}
	sb.WriteString(selectColumns)
	sb.WriteString(" WHERE 1=1")

	args := []any{}
	argN := 1

	in := func(values []string) string {
		placeholders := make([]string, 0, len(values))
		for _, v := range values {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, v)
			argN++
		}
		return "(" + strings.Join(placeholders, ",") + ")"
	}

	if len(filter.NurseryIDs) > 0 {
		sb.WriteString(" AND nursery_id IN " + in(filter.NurseryIDs))
	}
	if len(filter.ChildIDs) > 0 {
		sb.WriteString(" AND child_id IN " + in(filter.ChildIDs))
	}
	if len(filter.AgentIDs) > 0 {
		sb.WriteString(" AND (start_agent_id IN " + in(filter.AgentIDs))
		sb.WriteString(" OR completed_agent_id IN " + in(filter.AgentIDs) + ")")
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		sb.WriteString(" AND kind IN " + in(kinds))
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND start_time >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND start_time <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}
	if filter.OpenOnly {
		sb.WriteString(" AND end_time IS NULL AND kind IN ('presence','rest','activity')")
	}

	sb.WriteString(" ORDER BY start_time DESC, id ASC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]actions.Action, 0)
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAction(sc scanner) (actions.Action, error) {
	var a actions.Action
	var kind string
	var payload []byte

	if err := sc.Scan(
		&a.ID,
		&a.ChildID,
		&a.NurseryID,
		&kind,
		&a.StartAgentID,
		&a.CompletedAgentID,
		&a.Comment,
		&payload,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return actions.Action{}, err
	}

	a.Kind = actions.Kind(kind)
	if err := actions.UnmarshalPayload(&a, payload); err != nil {
		return actions.Action{}, err
	}
	return a, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", actions.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
