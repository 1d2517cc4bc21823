package domain

// Event is a domain event published after a unit of work commits.
type Event interface {
	// Type returns the routing key, e.g. "transfer.completed".
	Type() string
}
