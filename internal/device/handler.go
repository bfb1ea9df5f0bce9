package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ExtensionHandler owns one variant's extension table. The repository
// dispatches to exactly one handler per operation, chosen by the device's
// type tag, and always passes the transaction it is running in.
type ExtensionHandler interface {
	// Type is the tag this handler serves.
	Type() TypeID

	// Validate checks the variant's keys in props without writing.
	Validate(props Properties) error

	// Create writes the extension for a freshly inserted device.
	Create(ctx context.Context, q DBTX, deviceID int64, props Properties) (Extension, error)

	// Update overwrites the extension from props.
	Update(ctx context.Context, q DBTX, deviceID int64, props Properties) (Extension, error)

	// Load reads the extension.
	Load(ctx context.Context, q DBTX, deviceID int64) (Extension, error)

	// Delete removes the extension. A missing row is not an error.
	Delete(ctx context.Context, q DBTX, deviceID int64) error
}

// TypeRegistry maps type tags to extension handlers.
// Safe for concurrent use; registration normally happens once at startup.
type TypeRegistry struct {
	mu       sync.RWMutex
	handlers map[TypeID]ExtensionHandler
}

// NewTypeRegistry registers the given handlers. It fails on duplicates.
func NewTypeRegistry(handlers ...ExtensionHandler) (*TypeRegistry, error) {
	r := &TypeRegistry{handlers: make(map[TypeID]ExtensionHandler)}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultTypeRegistry returns a registry holding every built-in variant.
func DefaultTypeRegistry() *TypeRegistry {
	r, err := NewTypeRegistry(NewRFHandler())
	if err != nil {
		// Built-in tags are distinct constants.
		panic(err)
	}
	return r
}

// Register adds h. Registering a tag twice returns ErrDuplicateType.
func (r *TypeRegistry) Register(h ExtensionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.Type()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, h.Type())
	}
	r.handlers[h.Type()] = h
	return nil
}

// Lookup returns the handler for t or ErrUnregisteredType.
func (r *TypeRegistry) Lookup(t TypeID) (ExtensionHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, t)
	}
	return h, nil
}

// Types lists registered tags in ascending order.
func (r *TypeRegistry) Types() []TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]TypeID, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
