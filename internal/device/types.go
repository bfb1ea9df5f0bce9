package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TypeID tags a device with its variant. The integer is persisted as
// devices.device_type_id.
type TypeID int64

// Known device types.
const (
	// TypeRF is a 433MHz remote-controlled switch.
	TypeRF TypeID = 1
)

var typeNames = map[TypeID]string{
	TypeRF: "rf",
}

// String returns the config/API name, or "type(N)" for unknown tags.
func (t TypeID) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int64(t))
}

// ParseTypeID accepts a type name ("rf") or its numeric tag ("1").
// Unknown names return ErrUnregisteredType.
func ParseTypeID(s string) (TypeID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for id, name := range typeNames {
		if name == s {
			return id, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if _, ok := typeNames[TypeID(n)]; ok {
			return TypeID(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnregisteredType, s)
}

// Device is the generic record every variant shares.
//
// Type and owner are fixed at creation; Update only touches Name and
// Description.
type Device struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerUserID int64     `json:"owner_user_id"`
	TypeID      TypeID    `json:"device_type_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Extension is the variant record. Nil on owner listings, which load
	// generic records only.
	Extension Extension `json:"extension,omitempty"`
}

// Extension is a variant-specific record keyed by device id.
type Extension interface {
	// ExtensionType reports which variant this record belongs to.
	ExtensionType() TypeID
}

// RFExtension holds the codes an RF bridge transmits for a device.
type RFExtension struct {
	DeviceID    int64 `json:"device_id"`
	OnCode      int64 `json:"on_code"`
	OffCode     int64 `json:"off_code"`
	PulseLength int64 `json:"pulse_length"`
}

// ExtensionType implements Extension.
func (*RFExtension) ExtensionType() TypeID { return TypeRF }
