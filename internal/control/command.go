package control

import (
	"time"

	"github.com/google/uuid"
)

// Command is one control instruction. It is never persisted; the ID exists
// only so broker-side consumers can correlate logs and de-duplicate.
//
// CBOR uses small integer keys for constrained RF bridges.
type Command struct {
	ID       string    `json:"id" cbor:"1,keyasint"`
	UserID   int64     `json:"user_id" cbor:"2,keyasint"`
	DeviceID int64     `json:"device_id" cbor:"3,keyasint"`
	Action   string    `json:"action" cbor:"4,keyasint"`
	IssuedAt time.Time `json:"issued_at" cbor:"5,keyasint"`
}

// NewCommand stamps a fresh ID and the current UTC time.
func NewCommand(userID int64, action string, deviceID int64) Command {
	return Command{
		ID:       uuid.NewString(),
		UserID:   userID,
		DeviceID: deviceID,
		Action:   action,
		IssuedAt: time.Now().UTC(),
	}
}
