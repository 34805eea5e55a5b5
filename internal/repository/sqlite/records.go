package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Houeta/market-map/internal/repository"
)

// LoadRecord returns the payload saved under name.
func (r *Repository) LoadRecord(ctx context.Context, name string) ([]byte, error) {
	const opn = "repository.sqlite.LoadRecord"

	var payload []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM records WHERE name = ?", name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%s: failed to get record %s: %w", opn, name, err)
	}

	return payload, nil
}

// SaveRecord replaces the payload saved under name.
func (r *Repository) SaveRecord(ctx context.Context, name string, payload []byte) error {
	const opn = "repository.sqlite.SaveRecord"

	_, err := r.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO records (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		name, payload,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to save record %s: %w", opn, name, err)
	}

	r.log.DebugContext(ctx, "Record saved", "op", opn, "name", name, "size", len(payload))

	return nil
}

// DeleteRecord removes the record saved under name. Deleting a missing record is not an error.
func (r *Repository) DeleteRecord(ctx context.Context, name string) error {
	const opn = "repository.sqlite.DeleteRecord"

	if _, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE name = ?", name); err != nil {
		return fmt.Errorf("%s: failed to delete record %s: %w", opn, name, err)
	}

	return nil
}
