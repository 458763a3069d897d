package store

// Key is the composite primary key locating a record: the partition key
// groups related records, the sort key orders and filters within the group.
type Key struct {
	PK string
	SK string
}

// Record is the base interface implemented by every storable type.
type Record interface {
	// PrimaryKey returns the key of the record's primary copy.
	PrimaryKey() Key

	// RecordType returns the type tag stored in the _Type attribute
	// (e.g., "user").
	RecordType() string
}

// Projector is implemented by records that keep denormalized secondary
// copies under alternate keys. Projections are derived entirely from the
// record's own fields; in steady state every copy is reconstructible from
// the primary record.
type Projector interface {
	// Projections returns the keys of every secondary copy.
	Projections() []Key
}

// allKeys returns the primary key followed by any projection keys.
func allKeys(rec Record) []Key {
	keys := []Key{rec.PrimaryKey()}
	if p, ok := rec.(Projector); ok {
		keys = append(keys, p.Projections()...)
	}
	return keys
}
