package store

import (
	"context"

	"github.com/jacentio/ripple/internal/keys"
)

// CreateUser creates a user record. Returns ErrAlreadyExists when the user
// id is taken; concurrent connect events treat that as success.
func (t *Table) CreateUser(ctx context.Context, userID, userName string) (*UserRecord, error) {
	rec := &UserRecord{
		UserID:   userID,
		UserName: userName,
	}
	if err := t.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetUser retrieves a user by id.
func (t *Table) GetUser(ctx context.Context, userID string) (*UserRecord, error) {
	rec := &UserRecord{}
	key := Key{PK: keys.User(userID), SK: keys.Info}
	if err := t.Get(ctx, key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateUser rewrites a user record, typically after a display name change.
// Returns ErrNotFound when the user was never created.
func (t *Table) UpdateUser(ctx context.Context, rec *UserRecord) error {
	return t.Update(ctx, rec)
}

// ListUsers returns every user. This is the broadcast access path; it walks
// the whole table and should not appear on per-message hot paths.
func (t *Table) ListUsers(ctx context.Context) ([]*UserRecord, error) {
	items, err := t.scanByType(ctx, TypeUser)
	if err != nil {
		return nil, err
	}
	return decodeAll[*UserRecord](t, items), nil
}
