package ratelimit

// Config holds the per-client request limit.
// PerMinute <= 0 disables limiting. A non-empty RedisAddr shares counters
// across instances; otherwise they are kept in memory.
type Config struct {
	PerMinute     int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"              envDefault:"0"`
}

// Enabled reports whether requests are limited.
func (c *Config) Enabled() bool {
	return c != nil && c.PerMinute > 0
}
