// Package store provides a single-table DynamoDB data access layer for the
// chat domain.
//
// Ripple stores every logical entity type (users, connections, channels,
// subscriptions, messages) in one physical table. Each record declares a
// composite primary key and, optionally, denormalized secondary copies
// ("projections") that serve alternate lookup paths. There is no
// multi-record transaction: the primary copy and its projections are written
// concurrently and independently, and a crash between writes leaves a bounded
// inconsistency window that callers must tolerate.
//
// # Record Interfaces
//
// All entities implement the [Record] interface:
//
//	type Record interface {
//	    PrimaryKey() Key
//	    RecordType() string
//	}
//
// Records with secondary copies also implement [Projector]:
//
//	type Projector interface {
//	    Projections() []Key
//	}
//
// # Write Semantics
//
// [Table.Create] and [Table.Update] are mutually exclusive conditional
// writes: Create fails with [ErrAlreadyExists] when the key is present,
// Update fails with [ErrNotFound] when it is absent. They are never collapsed
// into an unconditional upsert; concurrent connect events rely on the create
// precondition to avoid double-creating a user. [Table.Delete] is idempotent.
//
// # Queries
//
// Range queries over a partition's sort-key space support begins-with
// filtering (listing connections, subscriptions) and greater-than-or-equal
// filtering (messages since a timestamp). Pagination is followed
// transparently; a query returns one finite, restartable sequence.
//
// # Errors
//
//   - [ErrNotFound] - record does not exist (lookup miss or update precondition)
//   - [ErrAlreadyExists] - create precondition violated; expected under races
package store
