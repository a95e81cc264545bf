package latest

import "context"

// Interface defines the contract for fetching a channel's latest update
type Interface interface {
	// Latest fetches the most recent update for the given channel.
	// A successful response with no update/channel yields a Result with
	// nil fields and a nil error.
	Latest(ctx context.Context, channelID string) (*Result, error)
}
