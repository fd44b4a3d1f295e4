// Package social defines the social-media posting collaborator contract.
//
// The only wired target today is Twitter/X; the telegram target is reserved
// at the trigger level and never reaches a Poster.
package social

import "context"

// Poster is the interface that wraps the Post method.
type Poster interface {
	// Post publishes message and returns an opaque result description
	// (typically the created post's ID).
	Post(ctx context.Context, message string) (string, error)
}

// PostFunc is an adapter to allow the use of ordinary functions as Posters.
type PostFunc func(ctx context.Context, message string) (string, error)

// Post calls the underlying function.
func (f PostFunc) Post(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}
