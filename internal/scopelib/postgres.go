package scopelib

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps a curated scope library in the oauth_scope_library table.
type PostgresStore struct {
	db *sql.DB
}

var _ Loader = (*PostgresStore)(nil)

func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres scope library")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	return &PostgresStore{db: db}, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Source() string { return SourcePostgres }

func (s *PostgresStore) Load(ctx context.Context) (*Library, error) {
	rows, err := s.db.QueryContext(ctx, `
		select scope, service, access_level, risk_score, risk_level, description,
		       potential_abuse, recommended_alternative, gdpr, hipaa, pci, updated_at
		from oauth_scope_library
		order by scope
	`)
	if err != nil {
		return nil, fmt.Errorf("query scope library: %w", err)
	}
	defer rows.Close()

	var (
		entries []Entry
		latest  time.Time
	)
	for rows.Next() {
		var (
			entry       Entry
			level       string
			abuseJSON   []byte
			alternative sql.NullString
			updatedAt   time.Time
		)
		if err := rows.Scan(
			&entry.Scope,
			&entry.Service,
			&entry.AccessLevel,
			&entry.RiskScore,
			&level,
			&entry.Description,
			&abuseJSON,
			&alternative,
			&entry.RegulatoryImpact.GDPR,
			&entry.RegulatoryImpact.HIPAA,
			&entry.RegulatoryImpact.PCI,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan scope library row: %w", err)
		}
		entry.RiskLevel = RiskLevel(level)
		if len(abuseJSON) > 0 {
			if err := json.Unmarshal(abuseJSON, &entry.PotentialAbuse); err != nil {
				return nil, fmt.Errorf("scope %q: decode potential_abuse: %w", entry.Scope, err)
			}
		}
		if alternative.Valid {
			entry.RecommendedAlternative = alternative.String
		}
		if updatedAt.After(latest) {
			latest = updatedAt
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scope library: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("scope library table is empty")
	}

	version := ""
	if !latest.IsZero() {
		version = latest.UTC().Format(time.RFC3339)
	}
	return NewLibrary(version, entries)
}

// Upsert writes entries in one transaction, replacing existing rows by scope.
func (s *PostgresStore) Upsert(ctx context.Context, entries []Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		abuseJSON, err := json.Marshal(entry.PotentialAbuse)
		if err != nil {
			return 0, fmt.Errorf("scope %q: encode potential_abuse: %w", entry.Scope, err)
		}
		var alternative sql.NullString
		if entry.RecommendedAlternative != "" {
			alternative = sql.NullString{String: entry.RecommendedAlternative, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			insert into oauth_scope_library
				(scope, service, access_level, risk_score, risk_level, description,
				 potential_abuse, recommended_alternative, gdpr, hipaa, pci, updated_at)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
			on conflict (scope) do update set
				service = excluded.service,
				access_level = excluded.access_level,
				risk_score = excluded.risk_score,
				risk_level = excluded.risk_level,
				description = excluded.description,
				potential_abuse = excluded.potential_abuse,
				recommended_alternative = excluded.recommended_alternative,
				gdpr = excluded.gdpr,
				hipaa = excluded.hipaa,
				pci = excluded.pci,
				updated_at = now()
		`,
			NormalizeScope(entry.Scope),
			entry.Service,
			entry.AccessLevel,
			entry.RiskScore,
			string(entry.RiskLevel),
			entry.Description,
			abuseJSON,
			alternative,
			entry.RegulatoryImpact.GDPR,
			entry.RegulatoryImpact.HIPAA,
			entry.RegulatoryImpact.PCI,
		); err != nil {
			return 0, fmt.Errorf("upsert scope %q: %w", entry.Scope, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
