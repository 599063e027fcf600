package config

// Build metadata, set with -ldflags "-X github.com/unlock-community/updelegate/internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
