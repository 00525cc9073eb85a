package receipts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores r and fills in its ID. A zero CastAt is set to now (UTC).
func (s *SQLiteRepository) Insert(ctx context.Context, r *models.Receipt) error {
	if r.CastAt.IsZero() {
		r.CastAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (national_id, election_type, candidate_id, candidate_name, party, message, cast_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.NationalID, string(r.ElectionType), r.CandidateID, r.CandidateName, r.Party, r.Message, r.CastAt)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read receipt id: %w", err)
	}
	r.ID = id
	return nil
}

// ListByVoter returns the voter's receipts, newest first.
func (s *SQLiteRepository) ListByVoter(ctx context.Context, nationalID string) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, national_id, election_type, candidate_id, candidate_name, party, message, cast_at
		FROM receipts WHERE national_id = ?
		ORDER BY cast_at DESC, id DESC
	`, nationalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var result []models.Receipt
	for rows.Next() {
		var r models.Receipt
		var et string
		if err := rows.Scan(&r.ID, &r.NationalID, &et, &r.CandidateID, &r.CandidateName, &r.Party, &r.Message, &r.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		r.ElectionType = models.ElectionType(et)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return result, nil
}
