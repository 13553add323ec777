package version

// Set via -ldflags "-X supermarket-inventory/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
