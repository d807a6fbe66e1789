// Package delivery defines the contract every transport front end
// implements, so the composition root can start them uniformly.
package delivery

import "context"

// Delivery is a serving front end, such as the HTTP API.
type Delivery interface {
	Serve(ctx context.Context) error
}
