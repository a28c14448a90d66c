// Package config provides configuration management for crcsum.
package config

// Default configuration values for crcsum.
const (
	// DefaultWorkers is the worker count; zero sizes the pool from the CPU count.
	DefaultWorkers = 0

	// DefaultAlgorithm is the checksum algorithm name.
	DefaultAlgorithm = "crc32"

	// DefaultDisplay prints absolute, symlink-free paths in the directory modes.
	DefaultDisplay = "canonical"

	// logFileName is the log file created under StateDir.
	logFileName = "crcsum.log"

	// DefaultLogLevel is the level for the log file.
	DefaultLogLevel = "info"

	// DefaultConsoleLevel is the level for log output on stderr.
	DefaultConsoleLevel = "warn"

	// EnvPrefix prefixes environment overrides, e.g. CRCSUM_WORKERS=4.
	EnvPrefix = "CRCSUM"

	// appName is the directory name used under XDG base directories.
	appName = "crcsum"
)

// DefaultExclusions contains glob patterns excluded from directory scans by default.
var DefaultExclusions = []string{}
