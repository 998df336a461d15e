package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/telemetry"
)

// Store persists routing-decision audit records in Postgres.
type Store struct {
	DB *sql.DB
}

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// SaveDecision appends one audit record. Records are write-once; there is no
// update path.
func (s *Store) SaveDecision(ctx context.Context, rec telemetry.Record) error {
	extra, err := json.Marshal(rec.AdditionalContext)
	if err != nil {
		extra = []byte("{}")
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO routing_decisions
			(id, created_at, intent, routing_mode, model_chosen,
			 prompt_tokens, completion_tokens, total_tokens,
			 latency_ms, rationale, has_phi, has_image, additional_context)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.Timestamp, rec.Intent, rec.Mode, rec.ModelChosen,
		rec.Tokens.PromptTokens, rec.Tokens.CompletionTokens, rec.Tokens.TotalTokens,
		rec.LatencyMS, rec.Rationale, rec.HasPHI, rec.HasImage, extra)
	return err
}

// ListDecisions returns the most recent audit records, newest first.
func (s *Store) ListDecisions(ctx context.Context, limit int) ([]telemetry.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, created_at, intent, routing_mode, model_chosen,
		       prompt_tokens, completion_tokens, total_tokens,
		       latency_ms, rationale, has_phi, has_image, additional_context
		FROM routing_decisions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []telemetry.Record
	for rows.Next() {
		var rec telemetry.Record
		var extra []byte
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Intent, &rec.Mode, &rec.ModelChosen,
			&rec.Tokens.PromptTokens, &rec.Tokens.CompletionTokens, &rec.Tokens.TotalTokens,
			&rec.LatencyMS, &rec.Rationale, &rec.HasPHI, &rec.HasImage, &extra); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			_ = json.Unmarshal(extra, &rec.AdditionalContext)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// AuditSink adapts the store to the telemetry.Sink interface.
type AuditSink struct {
	Store   *Store
	Timeout time.Duration
}

func NewAuditSink(s *Store) *AuditSink {
	return &AuditSink{Store: s, Timeout: 5 * time.Second}
}

func (a *AuditSink) Append(rec telemetry.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	return a.Store.SaveDecision(ctx, rec)
}
