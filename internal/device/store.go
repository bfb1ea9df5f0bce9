package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so stores can run inside the
// repository's transaction or standalone.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore persists generic device records in the devices table.
// It holds no connection; every call names the DBTX to run on.
type SQLiteStore struct{}

const deviceColumns = `id, name, description, owner_user_id, device_type_id, created_at, updated_at`

// Find returns the device record (without extension) or ErrDeviceNotFound.
func (SQLiteStore) Find(ctx context.Context, q DBTX, id int64) (*Device, error) {
	row := q.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return d, nil
}

// Save inserts d when d.ID is zero (assigning the new id) and otherwise
// overwrites name, description and updated_at. Owner and type are written
// only on insert. Last write wins.
func (SQLiteStore) Save(ctx context.Context, q DBTX, d *Device) error {
	// Timestamps are stored as RFC 3339 seconds; keep the in-memory copy
	// identical to what Find reads back.
	now := time.Now().UTC().Truncate(time.Second)
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	if d.ID == 0 {
		result, err := q.ExecContext(ctx, `
			INSERT INTO devices (name, description, owner_user_id, device_type_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.Name, d.Description, d.OwnerUserID, int64(d.TypeID),
			d.CreatedAt.Format(time.RFC3339), d.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting device: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading device id: %w", err)
		}
		d.ID = id
		return nil
	}

	result, err := q.ExecContext(ctx,
		`UPDATE devices SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.Description, d.UpdatedAt.Format(time.RFC3339), d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}
	return requireRow(result)
}

// Destroy deletes the device record. Returns ErrDeviceNotFound when absent.
func (SQLiteStore) Destroy(ctx context.Context, q DBTX, id int64) error {
	result, err := q.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRow(result)
}

// ListByOwner returns the owner's devices ordered by id, without extensions.
func (SQLiteStore) ListByOwner(ctx context.Context, q DBTX, ownerUserID int64) ([]Device, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE owner_user_id = ? ORDER BY id`,
		ownerUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying devices by owner: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(s rowScanner) (*Device, error) {
	var d Device
	var typeID int64
	var createdAt, updatedAt string

	if err := s.Scan(&d.ID, &d.Name, &d.Description, &d.OwnerUserID, &typeID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.TypeID = TypeID(typeID)

	var err error
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}
