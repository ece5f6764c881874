package main

// Default limits for CLI commands.
const (
	DefaultActivityLimit = 20
	DefaultSearchLimit   = 10
	TruncateWidth        = 60
)

// metricsNamespace prefixes every metric name.
const metricsNamespace = "lore"
