package lifecycle

// Config holds lifecycle tunables.
type Config struct {
	// DefaultTTLHours is applied to requests that do not set their own TTL.
	DefaultTTLHours int `json:"default_ttl_hours"`
	// SweepSchedule is a cron expression for the expiry sweeper. Empty
	// disables active sweeping; expiry stays computed on read.
	SweepSchedule string `json:"sweep_schedule"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DefaultTTLHours <= 0 {
		c.DefaultTTLHours = 24
	}
}
