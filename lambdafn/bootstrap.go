package lambdafn

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacentio/ripple/store"
)

// GeneralChannelID is the channel every user is subscribed to on connect.
const GeneralChannelID = "General"

// EnsureGeneralChannel creates the default channel if it does not exist yet.
// It is safe to run on every deployment; a channel that already exists is
// left untouched.
func EnsureGeneralChannel(ctx context.Context, table *store.Table) error {
	_, err := table.CreateChannel(ctx, GeneralChannelID, GeneralChannelID)
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("ensure %s channel: %w", GeneralChannelID, err)
	}
	return nil
}
