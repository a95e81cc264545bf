package latest

import "context"

// MockClient is a mock implementation of the Interface for testing
type MockClient struct {
	LatestFunc func(ctx context.Context, channelID string) (*Result, error)

	// Calls records the channel IDs passed to Latest, in order
	Calls []string
}

// Latest implements Interface.Latest
func (m *MockClient) Latest(ctx context.Context, channelID string) (*Result, error) {
	m.Calls = append(m.Calls, channelID)
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, channelID)
	}
	return &Result{}, nil
}
