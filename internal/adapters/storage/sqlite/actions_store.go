package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"nursery-care-log/internal/domain/actions"
)

type ActionStore struct {
	db *sqlx.DB
}

func NewActionStore(db *sqlx.DB) *ActionStore {
	return &ActionStore{db: db}
}

type actionRow struct {
	ID               string         `db:"id"`
	ChildID          string         `db:"child_id"`
	NurseryID        string         `db:"nursery_id"`
	Kind             string         `db:"kind"`
	StartAgentID     string         `db:"start_agent_id"`
	CompletedAgentID string         `db:"completed_agent_id"`
	Comment          string         `db:"comment"`
	StartTime        time.Time      `db:"start_time"`
	EndTime          sql.NullTime   `db:"end_time"`
	OpenSlot         sql.NullString `db:"open_slot"`
	Payload          string         `db:"payload"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func toRow(a actions.Action, slot string) (actionRow, error) {
	payload, err := actions.MarshalPayload(a)
	if err != nil {
		return actionRow{}, err
	}
	row := actionRow{
		ID:               a.ID,
		ChildID:          a.ChildID,
		NurseryID:        a.NurseryID,
		Kind:             string(a.Kind),
		StartAgentID:     a.StartAgentID,
		CompletedAgentID: a.CompletedAgentID,
		Comment:          a.Comment,
		StartTime:        a.StartTime().UTC(),
		OpenSlot:         sql.NullString{String: slot, Valid: slot != ""},
		Payload:          string(payload),
		CreatedAt:        a.CreatedAt.UTC(),
		UpdatedAt:        a.UpdatedAt.UTC(),
	}
	if end := a.EndTime(); end != nil {
		row.EndTime = sql.NullTime{Time: end.UTC(), Valid: true}
	}
	return row, nil
}

func (r actionRow) toAction() (actions.Action, error) {
	a := actions.Action{
		ID:               r.ID,
		ChildID:          r.ChildID,
		NurseryID:        r.NurseryID,
		Kind:             actions.Kind(r.Kind),
		StartAgentID:     r.StartAgentID,
		CompletedAgentID: r.CompletedAgentID,
		Comment:          r.Comment,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if err := actions.UnmarshalPayload(&a, []byte(r.Payload)); err != nil {
		return actions.Action{}, err
	}
	return a, nil
}

func (s *ActionStore) Insert(ctx context.Context, a actions.Action, slot string) error {
	row, err := toRow(a, slot)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO care_actions (
			id, child_id, nursery_id, kind,
			start_agent_id, completed_agent_id, comment,
			start_time, end_time, open_slot,
			payload, created_at, updated_at
		) VALUES (
			:id, :child_id, :nursery_id, :kind,
			:start_agent_id, :completed_agent_id, :comment,
			:start_time, :end_time, :open_slot,
			:payload, :created_at, :updated_at
		)`, row)
	return mapError(err)
}

func (s *ActionStore) Replace(ctx context.Context, a actions.Action) error {
	row, err := toRow(a, "")
	if err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE care_actions SET
			start_agent_id = :start_agent_id,
			completed_agent_id = :completed_agent_id,
			comment = :comment,
			start_time = :start_time,
			end_time = :end_time,
			payload = :payload,
			updated_at = :updated_at
		WHERE id = :id`, row)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM care_actions WHERE id = ?`, id)
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
	var row actionRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM care_actions WHERE id = ?`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return actions.Action{}, actions.ErrNotFound
	}
	if err != nil {
		return actions.Action{}, err
	}
	return row.toAction()
}

func (s *ActionStore) List(ctx context.Context, filter actions.Filter) ([]actions.Action, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.NurseryIDs) > 0 {
		where = append(where, "nursery_id IN (?)")
		args = append(args, filter.NurseryIDs)
	}
	if len(filter.ChildIDs) > 0 {
		where = append(where, "child_id IN (?)")
		args = append(args, filter.ChildIDs)
	}
	if len(filter.AgentIDs) > 0 {
		where = append(where, "(start_agent_id IN (?) OR completed_agent_id IN (?))")
		args = append(args, filter.AgentIDs, filter.AgentIDs)
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		where = append(where, "kind IN (?)")
		args = append(args, kinds)
	}
	if filter.From != nil {
		where = append(where, "start_time >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "start_time <= ?")
		args = append(args, filter.To.UTC())
	}
	if filter.OpenOnly {
		where = append(where, "end_time IS NULL AND kind IN ('presence','rest','activity')")
	}

	query := `SELECT * FROM care_actions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time DESC, id ASC"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}

	var rows []actionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	out := make([]actions.Action, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAction()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) &&
		(sqErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", actions.ErrConflict, sqErr)
	}
	return err
}
