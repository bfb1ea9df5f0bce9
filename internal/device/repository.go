package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/switchboard/internal/infrastructure/database"
)

// Logger defines the logging interface used by the Repository.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// OperationObserver counts repository calls. Satisfied by *metrics.Collector.
type OperationObserver interface {
	ObserveDeviceOperation(operation string, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveDeviceOperation(string, error) {}

// Repository is the single entry point for device CRUD. It composes the
// generic device store with the extension handler chosen by each device's
// type tag, and runs every multi-table write in one transaction so a device
// never exists without its extension.
//
// All methods are safe for concurrent use.
type Repository struct {
	db       *sql.DB
	devices  SQLiteStore
	types    *TypeRegistry
	logger   Logger
	observer OperationObserver
}

// NewRepository creates a repository over db dispatching through types.
func NewRepository(db *sql.DB, types *TypeRegistry) *Repository {
	return &Repository{
		db:       db,
		types:    types,
		logger:   noopLogger{},
		observer: noopObserver{},
	}
}

// SetLogger sets the logger for the repository.
func (r *Repository) SetLogger(logger Logger) {
	r.logger = logger
}

// SetObserver sets the operation counter.
func (r *Repository) SetObserver(o OperationObserver) {
	r.observer = o
}

// Create validates props, then inserts the device and its extension in one
// transaction. typeID is chosen by the caller; the repository has no default.
//
// Errors: ErrInvalidDevice, ErrUnregisteredType, ErrPersistence.
func (r *Repository) Create(ctx context.Context, props Properties, ownerUserID int64, typeID TypeID) (d *Device, err error) {
	defer func() { r.observe("create", err) }()

	name, description, err := genericFields(props)
	if err != nil {
		return nil, err
	}
	if ownerUserID <= 0 {
		return nil, fmt.Errorf("%w: owner user id must be positive", ErrInvalidDevice)
	}

	handler, err := r.types.Lookup(typeID)
	if err != nil {
		return nil, err
	}
	if err := handler.Validate(props); err != nil {
		return nil, err
	}

	d = &Device{
		Name:        name,
		Description: description,
		OwnerUserID: ownerUserID,
		TypeID:      typeID,
	}

	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.devices.Save(ctx, tx, d); err != nil {
			return err
		}
		ext, err := handler.Create(ctx, tx, d.ID, props)
		if err != nil {
			return err
		}
		d.Extension = ext
		return nil
	})
	if err != nil {
		return nil, wrapPersistence("creating device", err)
	}

	r.logger.Info("device created", "device_id", d.ID, "owner_user_id", ownerUserID, "type", typeID.String())
	return d, nil
}

// Update overwrites name and description and the extension attributes for
// the device's existing type. Type and owner never change.
//
// Errors: ErrInvalidDevice, ErrDeviceNotFound, ErrUnregisteredType,
// ErrPersistence.
func (r *Repository) Update(ctx context.Context, id int64, props Properties) (d *Device, err error) {
	defer func() { r.observe("update", err) }()

	name, description, err := genericFields(props)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		found, err := r.devices.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		handler, err := r.types.Lookup(found.TypeID)
		if err != nil {
			return err
		}
		if err := handler.Validate(props); err != nil {
			return err
		}

		found.Name = name
		found.Description = description

		ext, err := handler.Update(ctx, tx, found.ID, props)
		if err != nil {
			return err
		}
		if err := r.devices.Save(ctx, tx, found); err != nil {
			return err
		}
		found.Extension = ext
		d = found
		return nil
	})
	if err != nil {
		return nil, wrapPersistence("updating device", err)
	}

	r.logger.Info("device updated", "device_id", id)
	return d, nil
}

// Get returns the device with its extension loaded.
//
// Errors: ErrDeviceNotFound, ErrUnregisteredType, ErrPersistence.
func (r *Repository) Get(ctx context.Context, id int64) (d *Device, err error) {
	defer func() { r.observe("get", err) }()

	d, err = r.devices.Find(ctx, r.db, id)
	if err != nil {
		return nil, wrapPersistence("getting device", err)
	}
	handler, err := r.types.Lookup(d.TypeID)
	if err != nil {
		return nil, err
	}
	ext, err := handler.Load(ctx, r.db, id)
	if err != nil {
		return nil, wrapPersistence("loading extension", err)
	}
	d.Extension = ext
	return d, nil
}

// Delete removes the extension and the device in one transaction. Deleting
// an already-deleted id returns ErrDeviceNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) (err error) {
	defer func() { r.observe("delete", err) }()

	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		d, err := r.devices.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		handler, err := r.types.Lookup(d.TypeID)
		if err != nil {
			return err
		}
		if err := handler.Delete(ctx, tx, id); err != nil {
			return err
		}
		return r.devices.Destroy(ctx, tx, id)
	})
	if err != nil {
		return wrapPersistence("deleting device", err)
	}

	r.logger.Info("device deleted", "device_id", id)
	return nil
}

// Name returns only the device's name.
func (r *Repository) Name(ctx context.Context, id int64) (string, error) {
	d, err := r.devices.Find(ctx, r.db, id)
	if err != nil {
		return "", wrapPersistence("getting device name", err)
	}
	return d.Name, nil
}

// ListByOwner returns the owner's generic device records ordered by id.
// Extensions are not loaded.
func (r *Repository) ListByOwner(ctx context.Context, ownerUserID int64) (devices []Device, err error) {
	defer func() { r.observe("list", err) }()

	devices, err = r.devices.ListByOwner(ctx, r.db, ownerUserID)
	if err != nil {
		return nil, wrapPersistence("listing devices", err)
	}
	return devices, nil
}

func (r *Repository) observe(operation string, err error) {
	// Absent devices and bad input are caller errors, not failures.
	if errors.Is(err, ErrDeviceNotFound) || errors.Is(err, ErrInvalidDevice) || errors.Is(err, ErrUnregisteredType) {
		err = nil
	}
	r.observer.ObserveDeviceOperation(operation, err)
	if err != nil {
		r.logger.Error("device operation failed", "operation", operation, "error", err)
	}
}

// wrapPersistence passes domain sentinels through and marks everything else
// as a store failure.
func wrapPersistence(op string, err error) error {
	switch {
	case errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, ErrInvalidDevice),
		errors.Is(err, ErrUnregisteredType),
		errors.Is(err, ErrPersistence):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}
