// Package config holds the top-level runtime configuration for the kernel.
package config

import (
	"errors"
	"time"
)

// StorageBackend selects the deliverable storage adapter.
type StorageBackend string

const (
	StorageLocal StorageBackend = "local"
	StorageS3    StorageBackend = "s3"
)

// Config is the top-level configuration struct.  All fields have safe
// defaults so callers can start with Default() and override only what they
// need.
type Config struct {
	// Concurrency fabric controls (§4.7).
	Concurrency ConcurrencyConfig

	// Image memory manager controls (§4.1).
	Memory MemoryConfig

	// Scratch-directory lifecycle controls (§4.10).
	Scratch ScratchConfig

	// FITS persistence controls (§4.6).
	FITS FITSConfig

	// Default preview encode quality applied when a deliverable step does
	// not override it.
	DefaultQuality int // 1-100; default 85

	// Storage.
	Storage StorageBackend
	Local   LocalConfig
	S3      S3Config

	// Logging / metrics.
	LogLevel string // "debug", "info", "warn", "error"
}

// ConcurrencyConfig configures the async/virtual/exclusive-io executors and
// the fork/join pool.
type ConcurrencyConfig struct {
	MaxParallel    int           // fork/join permits; default runtime.NumCPU()
	TaskScrubEvery time.Duration // default 1s; not read: the executors scrub finished/canceled futures every second
	JobTimeout     time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// MemoryConfig configures the image memory manager's spill-to-disk policy.
type MemoryConfig struct {
	FreeRatioFlushNow  float64       // wrap() requests immediate flush below this free-heap fraction; default 0.10
	FreeRatioFlushAll  float64       // flushImages() triggers below this free-heap fraction; default 0.25
	FlushRecoverRatio  float64       // a flush worker aborts if free heap recovers past this fraction; default 0.50
	WatchdogInterval   time.Duration // auto-flush watchdog tick; default 10s
	IdleFlushAfter     time.Duration // flush handles idle longer than this; default 10s
	FlushWorkerMinimum int           // floor for max(1, cores/2); default 1
}

// ScratchConfig configures the per-PID scratch directory lifecycle.
type ScratchConfig struct {
	BaseDir   string // default os.TempDir()/jsolex
	Namespace string // subdirectory of os.TempDir() used when BaseDir is empty; default "jsolex"
}

// FITSConfig configures FITS read/write defaults.
type FITSConfig struct {
	Creator  string // CREATOR header card; default "JSol'Ex"
	Object   string // OBJECT header card; default "Sun"
	Observer string
}

// LocalConfig configures the local filesystem storage adapter for exported
// deliverables.
type LocalConfig struct {
	RootDir     string
	Permissions uint32 // default 0644
}

// S3Config configures the S3-compatible storage adapter for exported
// deliverables (BASS2000 upload and similar collaborators remain external;
// this adapter only persists bytes to a bucket).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional custom endpoint (MinIO, etc.)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		Concurrency: ConcurrencyConfig{
			MaxParallel:    0, // resolved at runtime to NumCPU
			TaskScrubEvery: time.Second,
			JobTimeout:     30 * time.Second,
			MaxRetries:     3,
			RetryDelay:     200 * time.Millisecond,
		},
		Memory: MemoryConfig{
			FreeRatioFlushNow:  0.10,
			FreeRatioFlushAll:  0.25,
			FlushRecoverRatio:  0.50,
			WatchdogInterval:   10 * time.Second,
			IdleFlushAfter:     10 * time.Second,
			FlushWorkerMinimum: 1,
		},
		Scratch: ScratchConfig{
			Namespace: "jsolex",
		},
		FITS: FITSConfig{
			Creator: "JSol'Ex",
			Object:  "Sun",
		},
		DefaultQuality: 85,
		Storage:        StorageLocal,
		LogLevel:       "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	if c.Memory.FreeRatioFlushNow <= 0 || c.Memory.FreeRatioFlushNow >= 1 {
		return errors.New("config: Memory.FreeRatioFlushNow must be in (0,1)")
	}
	if c.Memory.FreeRatioFlushAll <= c.Memory.FreeRatioFlushNow {
		return errors.New("config: Memory.FreeRatioFlushAll must exceed FreeRatioFlushNow")
	}
	if c.Memory.FlushRecoverRatio <= c.Memory.FreeRatioFlushAll {
		return errors.New("config: Memory.FlushRecoverRatio must exceed FreeRatioFlushAll")
	}
	if c.Scratch.Namespace == "" {
		return errors.New("config: Scratch.Namespace must not be empty")
	}
	return nil
}
