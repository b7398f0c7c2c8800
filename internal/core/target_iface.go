package core

import "github.com/dkeye/FrameBridge/internal/domain"

// WildcardOrigin posts without restricting the receiver's origin.
const WildcardOrigin = "*"

// Target is a handle to another messaging context.
// PostMessage is fire-and-forget: delivery failures are swallowed by the implementation.
type Target interface {
	PostMessage(message any, targetOrigin string)
}

// TargetFunc adapts a plain function to Target.
type TargetFunc func(message any, targetOrigin string)

func (f TargetFunc) PostMessage(message any, targetOrigin string) { f(message, targetOrigin) }

// OriginAllowed reports whether a message posted with targetOrigin may be
// delivered to a context loaded from origin.
func OriginAllowed(targetOrigin string, origin domain.Origin) bool {
	return targetOrigin == WildcardOrigin || targetOrigin == string(origin)
}
