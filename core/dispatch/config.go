package dispatch

// Config holds dispatch engine tunables.
type Config struct {
	// SendTimeoutSeconds bounds each notification send. A hung transport
	// call must not block completion of the dispatch.
	SendTimeoutSeconds int `json:"send_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SendTimeoutSeconds <= 0 {
		c.SendTimeoutSeconds = 5
	}
}
