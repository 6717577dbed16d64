// Package auth implements the identity gate: a fixed allow-list of user
// IDs loaded once at startup and checked before every operation.
package auth

// Gate holds the immutable allow-list. It is read-only after construction
// and therefore safe for concurrent use without locking.
type Gate struct {
	allowed map[int64]struct{}
}

// NewGate builds a gate from the configured user IDs.
func NewGate(userIDs []int64) *Gate {
	allowed := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = struct{}{}
	}
	return &Gate{allowed: allowed}
}

// IsAllowed reports whether userID is on the allow-list. O(1), pure.
func (g *Gate) IsAllowed(userID int64) bool {
	_, ok := g.allowed[userID]
	return ok
}
