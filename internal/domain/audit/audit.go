// Package audit records the mutations that matter for payroll review:
// period transitions, reopen sessions, duplicate cleanups and DIAN
// reporting marks.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	ActorID   string    `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId,omitempty"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Filter struct {
	Action  string
	Entity  string
	ActorID string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record is fire and forget. An audit write must never fail the
// business operation it describes, so errors land in the log only.
func (s *Service) Record(ctx context.Context, companyID, actorID, action, entity, entityID, details string) {
	s.RecordWithRequest(ctx, companyID, actorID, action, entity, entityID, details, "")
}

func (s *Service) RecordWithRequest(ctx context.Context, companyID, actorID, action, entity, entityID, details, requestID string) {
	var actor any
	if actorID != "" {
		actor = actorID
	}
	var eid any
	if entityID != "" {
		eid = entityID
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log (company_id, actor_user_id, action, entity, entity_id, details, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, companyID, actor, action, entity, eid, details, requestID)
	if err != nil {
		slog.Error("audit write failed",
			"company_id", companyID,
			"action", action,
			"entity", entity,
			"error", err,
		)
	}
}

func (s *Service) Count(ctx context.Context, companyID string, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", companyID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, companyID string, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery(
		"SELECT id, company_id, COALESCE(actor_user_id::text, ''), action, entity, COALESCE(entity_id::text, ''), details, request_id, created_at",
		companyID, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Details, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildBaseQuery(selectClause, companyID string, filter Filter) (string, []any) {
	query := selectClause + " FROM audit_log WHERE company_id = $1"
	args := []any{companyID}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		query += fmt.Sprintf(" AND entity = $%d", len(args))
	}
	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(" AND actor_user_id = $%d", len(args))
	}
	return query, args
}
