package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/dongyar/internal/models"
	"github.com/mmynk/dongyar/internal/storage"
)

// CreateSettlement persists a settlement with its contributions and transfers.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Title == "" {
		settlement.Title = generateTitle(settlement.Names())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, title, total, equal_share, locale, currency, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Title, settlement.Total, settlement.EqualShare,
		settlement.Locale, settlement.Currency, settlement.CreatedAt, settlement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for i, c := range settlement.Contributions {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO contributions (settlement_id, position, name, amount) VALUES (?, ?, ?, ?)",
			settlement.ID, i, c.Name, c.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contribution: %w", err)
		}
	}

	for i, t := range settlement.Transfers {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transfers (settlement_id, position, from_name, to_name, amount) VALUES (?, ?, ?, ?, ?)",
			settlement.ID, i, t.From, t.To, t.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID. Contributions and transfers
// come back in their original order.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, total, equal_share, locale, currency, created_at, created_by
		 FROM settlements WHERE id = ?`,
		settlementID,
	).Scan(&settlement.ID, &settlement.Title, &settlement.Total, &settlement.EqualShare,
		&settlement.Locale, &settlement.Currency, &settlement.CreatedAt, &settlement.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if settlement.Contributions, err = s.listContributions(ctx, settlementID); err != nil {
		return nil, err
	}
	if settlement.Transfers, err = s.listTransfers(ctx, settlementID); err != nil {
		return nil, err
	}

	return settlement, nil
}

func (s *SQLiteStore) listContributions(ctx context.Context, settlementID string) ([]models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, amount FROM contributions WHERE settlement_id = ? ORDER BY position",
		settlementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		if err := rows.Scan(&c.Name, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}

	return contributions, nil
}

func (s *SQLiteStore) listTransfers(ctx context.Context, settlementID string) ([]models.Transfer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT from_name, to_name, amount FROM transfers WHERE settlement_id = ? ORDER BY position",
		settlementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.From, &t.To, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return transfers, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}

	return nil
}
