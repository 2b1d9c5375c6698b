package store

// Strategy selects which entries a cleanup pass demotes or evicts
// first.
type Strategy int

const (
	// Combined orders by access count, breaking ties by last access.
	// This is the default strategy.
	Combined Strategy = iota

	// LastAccess orders by last access time, oldest first.
	LastAccess

	// LeastUsed orders by access count, least used first.
	LeastUsed
)

func (s Strategy) String() string {
	switch s {
	case Combined:
		return "combined"
	case LastAccess:
		return "last_access"
	case LeastUsed:
		return "least_used"
	default:
		return "unknown"
	}
}
