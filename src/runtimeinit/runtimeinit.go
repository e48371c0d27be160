package runtimeinit

import (
	"fmt"
	"log"

	"screen-capper/src/clipboard"
	"screen-capper/src/config"
	"screen-capper/src/geometry"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enable bool, dir string)
	// Geometry defaults to the live monitors.
	Geometry *geometry.Service
	// InitClipboard is called when COPY_TO_CLIPBOARD is on. A failure only
	// disables copying.
	InitClipboard func() error
}

// Bootstrap loads configuration, sets up logging and checks that at least
// one display is attached.
func Bootstrap(opts Options) (*config.Config, *geometry.Service, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, cfg.OutputDir)
	}
	if cfg.EnvPath != "" {
		log.Printf("Config loaded from %s", cfg.EnvPath)
	}

	geo := opts.Geometry
	if geo == nil {
		geo = geometry.NewService(nil)
	}
	if _, err := geo.VirtualBounds(); err != nil {
		return nil, nil, fmt.Errorf("display check failed: %w", err)
	}
	geo.LogMonitorConfiguration()

	if cfg.CopyToClipboard {
		initClip := opts.InitClipboard
		if initClip == nil {
			initClip = clipboard.Init
		}
		if err := initClip(); err != nil {
			log.Printf("Clipboard disabled: %v", err)
			cfg.CopyToClipboard = false
		}
	}

	log.Printf("Output directory: %s", cfg.OutputDir)
	return cfg, geo, nil
}
