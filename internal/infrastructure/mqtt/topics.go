package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "switchboard"

// Topics builds Switchboard topic names under a configurable prefix.
//
//	topics := mqtt.NewTopics("switchboard")
//	topics.DeviceCommand(7, 42, "on")
//	// Returns: "switchboard/users/7/devices/42/on"
type Topics struct {
	prefix string
}

// NewTopics returns a builder rooted at prefix. Leading and trailing slashes
// are trimmed; an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root segment.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// DeviceCommand returns the topic an RF bridge subscribes to for one device.
// The action is the final segment so bridges can filter on it.
//
// Example: switchboard/users/7/devices/42/on
func (t Topics) DeviceCommand(userID, deviceID int64, action string) string {
	return fmt.Sprintf("%s/users/%d/devices/%d/%s", t.Prefix(), userID, deviceID, action)
}

// SystemStatus carries the retained online/offline status and the LWT.
//
// Example: switchboard/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.Prefix())
}
