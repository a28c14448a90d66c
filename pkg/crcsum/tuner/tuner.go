// Package tuner sizes the checksum worker pool from the detected hardware:
// one worker per logical CPU, each holding at most one read buffer.
package tuner

import "runtime"

// Worker configuration limits.
const (
	// maxWorkers is the maximum number of workers for the pool.
	maxWorkers = 64

	// minWorkers is the minimum number of workers.
	minWorkers = 1

	// queuePerWorker is the number of buffered units per worker.
	queuePerWorker = 4
)

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int
}

// OptimalConfig contains the tuned pool configuration.
type OptimalConfig struct {
	// Workers is the number of concurrent checksum workers.
	Workers int

	// QueueSize is the buffer size of the unit channel feeding the workers.
	QueueSize int
}

// Detect detects available system resources.
func Detect() SystemResources {
	return SystemResources{CPUCores: runtime.NumCPU()}
}

// Calculate returns the pool configuration for the given resources:
// one worker per core, clamped to [1, 64], with a queue of four units per worker.
func Calculate(resources SystemResources) OptimalConfig {
	workers := max(resources.CPUCores, minWorkers)
	workers = min(workers, maxWorkers)

	return OptimalConfig{
		Workers:   workers,
		QueueSize: workers * queuePerWorker,
	}
}

// CalculateWithOverrides applies a user override to the calculated config.
// An override greater than 0 replaces the worker count (still capped at 64);
// 0 or negative keeps the calculated value.
func CalculateWithOverrides(resources SystemResources, workerOverride int) OptimalConfig {
	config := Calculate(resources)

	if workerOverride > 0 {
		config.Workers = min(workerOverride, maxWorkers)
		config.QueueSize = config.Workers * queuePerWorker
	}

	return config
}

