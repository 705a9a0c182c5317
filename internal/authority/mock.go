package authority

import (
	"context"
	"sync/atomic"
	"time"
)

// MockClient is a configurable registry client for tests and local
// development. A configurable latency mimics real-world calls.
type MockClient struct {
	Response Response
	Err      error
	Latency  time.Duration

	calls atomic.Int32
}

func (c *MockClient) Verify(ctx context.Context, _ VerifyRequest) (Response, error) {
	c.calls.Add(1)
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if c.Err != nil {
		return Response{}, c.Err
	}
	return c.Response, nil
}

// Calls reports how many times Verify was invoked.
func (c *MockClient) Calls() int {
	return int(c.calls.Load())
}
