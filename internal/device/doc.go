// Package device provides the Device Repository for Switchboard.
//
// A device is a generic record (name, description, owner, type tag) plus
// exactly one type-specific extension stored in its own table. The only
// built-in variant today is RF: a 433MHz-style outlet with on/off codes and a
// pulse length.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                         Repository                           │
//	│                                                              │
//	│  ┌──────────────────┐    ┌──────────────────────────────┐    │
//	│  │   SQLiteStore    │    │        TypeRegistry          │    │
//	│  │   (store.go)     │    │        (handler.go)          │    │
//	│  │ • devices table  │    │  TypeRF ──▶ RFHandler (rf.go) │    │
//	│  └──────────────────┘    └──────────────────────────────┘    │
//	│           │                         │                        │
//	│           └──── one transaction ────┘                        │
//	└──────────────────────────────────────────────────────────────┘
//
// Create and Delete write both tables in a single transaction, so a device
// never exists without its extension. An unknown type tag fails with
// ErrUnregisteredType instead of silently doing nothing.
//
// # Usage
//
//	repo := device.NewRepository(db.DB, device.DefaultTypeRegistry())
//	d, err := repo.Create(ctx, device.Properties{
//	    "name": "Lamp", "description": "",
//	    "on_code": 1, "off_code": 2, "pulse_length": 350,
//	}, userID, device.TypeRF)
//
// # Thread Safety
//
// Repository and TypeRegistry are safe for concurrent use. Concurrent updates
// to the same device are last-write-wins.
package device
