package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-capper/src/clipboard"
	"screen-capper/src/config"
	"screen-capper/src/eventloop"
	"screen-capper/src/geometry"
	"screen-capper/src/hotkey"
	"screen-capper/src/logutil"
	"screen-capper/src/namedialog"
	"screen-capper/src/overlay"
	"screen-capper/src/popup"
	"screen-capper/src/runtimeinit"
	"screen-capper/src/screenshot"
	"screen-capper/src/singleinstance"
	"screen-capper/src/tray"
)

type mainOptions struct {
	outputDir string
	session   string
	region    string
	logToFile bool
}

// Long flags that older scripts pass with a single dash.
var legacyFlags = []string{"output-dir", "session", "region", "log"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := normalizeLegacyArgs(os.Args)
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-capper",
		Short:         "Select a screen region and save repeated captures of it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory captures are written to (overrides OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.session, "session", "", "Start with this session name instead of asking")
	cmd.Flags().StringVar(&opts.region, "region", "", "Start with a locked region x,y,w,h in global pixels")
	cmd.Flags().BoolVar(&opts.logToFile, "log", false, "Write a debug log next to the captures")

	cmd.AddCommand(newSendCmd())
	return cmd
}

func newSendCmd() *cobra.Command {
	var timeout time.Duration
	names := make([]string, 0, 5)
	for _, a := range []hotkey.Action{hotkey.ActivateSelection, hotkey.Capture, hotkey.ToggleLock, hotkey.NewSession, hotkey.Quit} {
		names = append(names, a.String())
	}
	cmd := &cobra.Command{
		Use:       "send <action>",
		Short:     "Ask the running instance to perform an action",
		Long:      "Ask the running instance to perform an action: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(io.Discard)
			// .env may move the port range.
			_, _ = config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return sendAction(ctx, singleinstance.NewClient(), args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the running instance")
	return cmd
}

var errNoResident = errors.New("no running screen-capper instance found")

func sendAction(ctx context.Context, client singleinstance.Client, action string, out io.Writer) error {
	if _, err := hotkey.ParseAction(action); err != nil {
		return err
	}
	delegated, outcome, err := client.Send(ctx, action)
	if err != nil {
		return err
	}
	if !delegated {
		return errNoResident
	}
	fmt.Fprintln(out, outcome)
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range legacyFlags {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}
	return normalized
}

// parseRegion reads "x,y,w,h".
func parseRegion(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	r := geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return geometry.Rect{}, fmt.Errorf("region %q has no area", s)
	}
	return r, nil
}

func runResident(opts mainOptions) error {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.Load()
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	port, running := singleinstance.DetectResidentPort(probeCtx)
	probeCancel()
	if running {
		fmt.Printf("screen-capper is already running on port %d; use 'screen-capper send <action>'\n", port)
		os.Exit(1)
	}

	cfg, geo, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			OutputDirOverride:   opts.outputDir,
			SessionNameOverride: opts.session,
			RegionOverride:      opts.region,
			ForceFileLogging:    opts.logToFile,
		},
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		popup.Fatal("Screen Capper", err.Error())
		return err
	}

	var preset geometry.Rect
	if cfg.Region != "" {
		if preset, err = parseRegion(cfg.Region); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface, err := overlay.NewSurface()
	if err != nil {
		log.Printf("Overlay unavailable, running degraded: %v", err)
		surface = nil
	}

	deps := eventloop.Deps{
		Geometry:  geo,
		Surface:   surface,
		Backend:   screenshot.Screen{},
		Namer:     &namedialog.Preset{Name: cfg.SessionName, Next: namedialog.Dialog{}},
		Server:    singleinstance.NewServer(),
		CopyImage: clipboard.WriteImage,
	}

	dispatcher, err := hotkey.New(hotkey.DefaultBindings, 0)
	if err == nil {
		err = dispatcher.Start()
	}
	if err != nil {
		log.Printf("Global shortcuts unavailable: %v", err)
		popup.Warn("Shortcuts unavailable", "Global keyboard shortcuts could not be registered. Use the tray menu instead.")
	} else {
		defer dispatcher.Stop()
		deps.Hotkeys = dispatcher.Actions()
		deps.Suspender = dispatcher
	}

	var loop *eventloop.Loop
	trayIcon := tray.New(tray.Config{
		Title:   "Screen Capper",
		Tooltip: "Screen Capper - Ctrl+Shift+S to select a region",
		OnAction: func(a hotkey.Action) {
			if loop != nil {
				loop.Post(a)
			}
		},
		OnExit: cancel,
	})
	deps.Indicator = trayIcon

	loop, err = eventloop.New(cfg, deps)
	if err != nil {
		return err
	}
	go trayIcon.Run()
	defer trayIcon.Destroy()

	if cfg.Region != "" {
		if err := loop.PresetRegion(ctx, preset); err != nil {
			popup.Warn("Region", fmt.Sprintf("Could not use region %s: %v", cfg.Region, err))
		}
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	log.Printf("Screen Capper running, output to %s", cfg.OutputDir)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}
