package content

type storeConfig struct {
	initialGap int
}

// Option configures a Store.
type Option func(*storeConfig)

// WithInitialCapacity sets the size of the gap allocated up front.
func WithInitialCapacity(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.initialGap = n
		}
	}
}
