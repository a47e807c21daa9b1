package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joao-fontenele/storefront/internal/domain"
)

const DefaultDocumentID = "default"

// PostgresStore keeps the document as one jsonb row. The version column is
// an optimistic concurrency token: a write only lands if nobody else wrote
// since the snapshot was read.
type PostgresStore struct {
	db         *sql.DB
	documentID string
}

func NewPostgresStore(db *sql.DB, documentID string) *PostgresStore {
	if documentID == "" {
		documentID = DefaultDocumentID
	}
	return &PostgresStore{db: db, documentID: documentID}
}

func (s *PostgresStore) Read(ctx context.Context) (*domain.Snapshot, error) {
	var (
		body    []byte
		version int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT body, version
		FROM storefront.documents
		WHERE id = $1
	`, s.documentID).Scan(&body, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	snap := &domain.Snapshot{}
	if err := json.Unmarshal(body, snap); err != nil {
		return nil, fmt.Errorf("%w: decode document %s: %v", ErrUnavailable, s.documentID, err)
	}
	snap.Version = version

	return normalize(snap), nil
}

func (s *PostgresStore) Write(ctx context.Context, snap *domain.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	var result sql.Result
	if snap.Version == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO storefront.documents (id, body, version, updated_at)
			VALUES ($1, $2, 1, NOW())
			ON CONFLICT (id) DO NOTHING
		`, s.documentID, body)
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE storefront.documents
			SET body = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3
		`, s.documentID, body, snap.Version)
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	snap.Version++
	return nil
}
