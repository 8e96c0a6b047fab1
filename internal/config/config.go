package config

import "time"

// ClientConfig is the root configuration for the notification client.
type ClientConfig struct {
	Instance   InstanceConfig   `yaml:"instance"`
	API        APIConfig        `yaml:"api"`
	Connection ConnectionConfig `yaml:"connection"`
	Feed       FeedConfig       `yaml:"feed"`
}

// InstanceConfig identifies this client instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds notification service endpoints and credentials.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	Token      string        `yaml:"token"`   // usually ${ERP_NOTIFY_TOKEN}
	UserID     string        `yaml:"user_id"` // usually ${ERP_NOTIFY_USER_ID}
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// ConnectionConfig holds push connection settings.
type ConnectionConfig struct {
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxAttempts int           `yaml:"reconnect_max_attempts"`
	AuthTimeout          time.Duration `yaml:"auth_timeout"`
	PingInterval         time.Duration `yaml:"ping_interval"`
	PingTimeout          time.Duration `yaml:"ping_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	FrameBufferSize      int           `yaml:"frame_buffer_size"`
}

// FeedConfig holds notification feed settings.
type FeedConfig struct {
	PageSize      int           `yaml:"page_size"`
	PrefetchPages int           `yaml:"prefetch_pages"`
	StoreCapacity int           `yaml:"store_capacity"` // 0 = unbounded
	TombstoneTTL  time.Duration `yaml:"tombstone_ttl"`
	Rooms         []string      `yaml:"rooms"`
}
