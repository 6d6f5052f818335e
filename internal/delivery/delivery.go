// Package delivery defines the contract every long-running delivery
// (HTTP server, background loop) satisfies so main can start them uniformly.
package delivery

import "context"

// Delivery is a long-running entry point of the application.
type Delivery interface {
	// Serve blocks until the delivery stops or ctx is cancelled.
	Serve(ctx context.Context) error
}
