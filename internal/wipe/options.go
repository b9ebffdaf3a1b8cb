package wipe

import (
	"runtime"
	"time"

	"secureformat/internal/config"
)

// Options configures an Orchestrator.
type Options struct {
	Method           Method
	AbortOnError     bool
	Simulate         bool
	StepTick         time.Duration
	ChunkSize        int
	MaxSpeedMBps     float64
	CommandTimeout   time.Duration
	DiskCleanTimeout time.Duration
	JunkFiles        int
	JunkFileSize     int64
	// TempDir holds junk data and command scripts; "" uses os.TempDir.
	TempDir string
	// GOOS selects the command plans; "" uses runtime.GOOS.
	GOOS string
}

// OptionsFromConfig maps the wipe section of cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	method, err := ParseMethod(cfg.Wipe.Method)
	if err != nil {
		method = MethodRandom
	}
	return Options{
		Method:           method,
		AbortOnError:     cfg.Wipe.OnError == config.OnErrorAbort,
		StepTick:         cfg.StepTick(),
		ChunkSize:        int(cfg.Wipe.ChunkSize),
		MaxSpeedMBps:     cfg.Wipe.MaxSpeedMBps,
		CommandTimeout:   cfg.CommandTimeout(),
		DiskCleanTimeout: cfg.DiskCleanTimeout(),
		JunkFiles:        cfg.Wipe.JunkFiles,
		JunkFileSize:     cfg.Wipe.JunkFileSize,
	}
}

func (o Options) goos() string {
	if o.GOOS != "" {
		return o.GOOS
	}
	return runtime.GOOS
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 4 * 1024 * 1024
}
