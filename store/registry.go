package store

import "fmt"

// Registry maps record type tags to factories. The chat domain is a closed
// set of tagged variants stored in one table; the registry dispatches raw
// items back to their concrete type using the _Type attribute.
type Registry struct {
	factories map[string]func() Record
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]func() Record),
	}
}

// Register adds a record type to the registry. The factory must return a
// pointer so query results can be unmarshaled into it.
func (r *Registry) Register(typeTag string, factory func() Record) {
	r.factories[typeTag] = factory
}

// New returns a fresh record of the given type tag.
func (r *Registry) New(typeTag string) (Record, error) {
	factory, ok := r.factories[typeTag]
	if !ok {
		return nil, fmt.Errorf("ripple: unknown record type %q", typeTag)
	}
	return factory(), nil
}

// Has reports whether a type tag is registered.
func (r *Registry) Has(typeTag string) bool {
	_, ok := r.factories[typeTag]
	return ok
}

// DefaultRegistry returns a registry covering every chat record type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeUser, func() Record { return &UserRecord{} })
	r.Register(TypeConnection, func() Record { return &ConnectionRecord{} })
	r.Register(TypeChannel, func() Record { return &ChannelRecord{} })
	r.Register(TypeSubscription, func() Record { return &SubscriptionRecord{} })
	r.Register(TypeMessage, func() Record { return &MessageRecord{} })
	return r
}
