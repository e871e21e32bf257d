package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/tourguide/internal/browser"
	"github.com/muurk/tourguide/internal/config"
	"github.com/muurk/tourguide/internal/discovery"
	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/layout"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/preview"
	"github.com/muurk/tourguide/internal/server"
	"github.com/muurk/tourguide/internal/store"
	"github.com/muurk/tourguide/internal/tour"
	"github.com/muurk/tourguide/internal/ui"
	"github.com/muurk/tourguide/internal/viewport"
)

// Shared command flags
var (
	tourPath    string
	storeName   string
	dbPath      string
	force       bool
	jsonOutput  bool
	scanTimeout int
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
}

// openStore opens the completion store named by --store, falling back to
// the registry preference.
func openStore(cmd *cobra.Command, reg *config.Registry) (store.Store, error) {
	backend := storeBackend(cmd, reg)
	st, err := store.Open(backend, reg, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	return st, nil
}

// storeBackend reads --store from the running command. The flag variable is
// shared between commands with different defaults.
func storeBackend(cmd *cobra.Command, reg *config.Registry) string {
	backend, _ := cmd.Flags().GetString("store")
	if !cmd.Flags().Changed("store") && reg.Preferences != nil && reg.Preferences.Store != "" {
		backend = reg.Preferences.Store
	}
	return backend
}

func storeSource(cmd *cobra.Command, reg *config.Registry) string {
	backend := storeBackend(cmd, reg)
	switch backend {
	case store.BackendSQLite:
		if dbPath != "" {
			return "sqlite " + dbPath
		}
		return "sqlite (config directory)"
	case store.BackendMemory:
		return "memory"
	default:
		return "yaml " + reg.Path()
	}
}

// --- run ---

var (
	pageURL    string
	controlURL string
	listenAddr string
	advertise  bool
	headless   bool
	keepOpen   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a tour in a Chrome page",
	Long: `Open a page in Chrome and run a tour over it.

Chrome is launched locally unless --control-url points at a running instance.
With --listen, a WebSocket bridge streams the tour to other tools and accepts
next/back/skip/close intents. With --advertise, the bridge is announced over
mDNS so 'tourguide scan' can find it.

A tour that was already completed or skipped is not shown again unless
--force is given.`,
	Example: `  # Run a tour against a local dev server
  tourguide run --url http://localhost:3000 --tour onboarding.yaml

  # Replay a finished tour and expose the bridge
  tourguide run --url http://localhost:3000 --tour onboarding.yaml --force --listen :8787

  # Use an already running Chrome
  tourguide run --url https://app.example.com --tour tour.yaml --control-url ws://127.0.0.1:9222/devtools/browser/...`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&pageURL, "url", "", "Page URL to open (required)")
	runCmd.Flags().StringVar(&tourPath, "tour", "", "Tour definition file (required)")
	runCmd.Flags().StringVar(&controlURL, "control-url", "", "DevTools URL of a running Chrome")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "Bridge listen address, e.g. :8787 (default: registry preference when --advertise)")
	runCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the bridge over mDNS")
	runCmd.Flags().BoolVar(&headless, "headless", false, "Launch Chrome headless")
	runCmd.Flags().BoolVar(&force, "force", false, "Show the tour even if it was already finished")
	runCmd.Flags().BoolVar(&keepOpen, "keep-open", false, "Keep running after the tour finishes")
	runCmd.Flags().StringVar(&storeName, "store", store.BackendYAML, "Completion store (yaml, sqlite, memory)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	_ = runCmd.MarkFlagRequired("url")
	_ = runCmd.MarkFlagRequired("tour")
}

func runRun(cmd *cobra.Command, args []string) error {
	tf, err := config.LoadTourFile(tourPath)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	prefs := reg.Preferences
	if !cmd.Flags().Changed("headless") && prefs != nil {
		headless = prefs.Headless
	}
	if !cmd.Flags().Changed("advertise") && prefs != nil {
		advertise = prefs.Advertise
	}
	if listenAddr == "" && advertise && prefs != nil {
		listenAddr = prefs.ListenAddr
	}

	st, err := openStore(cmd, reg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := browser.Open(ctx, browser.Options{URL: pageURL, ControlURL: controlURL, Headless: headless})
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	outcome := make(chan tour.Outcome, 1)
	opts := tour.Options{
		Definition: tf.Definition,
		Host:       sess.Host(),
		Store:      st,
		Renderers:  []tour.Renderer{sess.Overlay()},
		Listeners: []tour.Listener{tour.ListenerFuncs{
			OnCompleted: func() { notifyOutcome(outcome, tour.OutcomeCompleted) },
			OnSkipped:   func() { notifyOutcome(outcome, tour.OutcomeSkipped) },
		}},
	}
	tf.Timing.Apply(&opts)

	engine, err := tour.New(opts)
	if err != nil {
		return err
	}
	engine.Start()
	defer engine.Stop()

	if listenAddr != "" {
		stopBridge, err := startBridge(ctx, engine, listenAddr, advertise)
		if err != nil {
			return err
		}
		defer stopBridge()
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- sess.Listen(ctx, engine) }()

	if !engine.Activate(force) {
		fmt.Println(ui.NewWarningResult("Tour already finished",
			ui.Param{Key: "Tour", Value: tf.StorageKey()},
			ui.Param{Key: "Replay", Value: "tourguide run --force ..."},
		).Render())
		if !keepOpen {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-listenErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("page event bridge stopped: %w", err)
			}
			<-ctx.Done()
			return nil
		case o := <-outcome:
			fmt.Println(ui.NewSuccessResult("Tour "+string(o),
				ui.Param{Key: "Tour", Value: tf.StorageKey()},
				ui.Param{Key: "Store", Value: storeSource(cmd, reg)},
			).Render())
			if !keepOpen {
				return nil
			}
		}
	}
}

func notifyOutcome(ch chan tour.Outcome, o tour.Outcome) {
	select {
	case ch <- o:
	default:
	}
}

// startBridge serves the WebSocket bridge and, optionally, advertises it.
// The returned function stops both.
func startBridge(ctx context.Context, engine *tour.Engine, addr string, announce bool) (func(), error) {
	host, port, err := splitListen(addr)
	if err != nil {
		return nil, err
	}
	srv, err := server.New(&server.Config{Host: host, Port: port}, engine)
	if err != nil {
		return nil, err
	}
	engine.AddRenderer(srv)
	engine.Subscribe(srv)

	bridgeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Start(bridgeCtx); err != nil {
			logging.Error("Bridge stopped", zap.Error(err))
		}
	}()

	var adv *discovery.Advertiser
	if announce {
		def := engine.Definition()
		adv, err = discovery.Advertise(def.StorageKey(), def.Name, port)
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	return func() {
		adv.Shutdown()
		cancel()
		<-done
	}, nil
}

// --- preview ---

var previewSize string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a tour in the terminal",
	Long: `Run a tour against the simulated page described in the tour file.

The tour file needs a 'page' section listing the tagged elements and their
positions. Keys drive the tour the way a user would: advance, go back,
close, scroll and switch window sizes.

Previews use an in-memory completion store unless --store is given.`,
	Example: `  # Preview on a desktop window
  tourguide preview --tour onboarding.yaml

  # Start on a phone-sized window
  tourguide preview --tour onboarding.yaml --size mobile
  tourguide preview --tour onboarding.yaml --size 390x844`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&tourPath, "tour", "", "Tour definition file (required)")
	previewCmd.Flags().StringVar(&previewSize, "size", "desktop", "Window size: preset name or WIDTHxHEIGHT")
	previewCmd.Flags().StringVar(&storeName, "store", store.BackendMemory, "Completion store (yaml, sqlite, memory)")
	previewCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	previewCmd.Flags().BoolVar(&force, "force", false, "Show the tour even if it was already finished")
	_ = previewCmd.MarkFlagRequired("tour")
}

// previewPresets returns the preset list and the starting index for size.
func previewPresets(size string) ([]preview.Preset, int, error) {
	presets := append([]preview.Preset(nil), preview.DefaultPresets...)
	for i, p := range presets {
		if strings.EqualFold(p.Name, size) {
			return presets, i, nil
		}
	}
	w, h, err := parseSize(size)
	if err != nil {
		return nil, 0, err
	}
	return append([]preview.Preset{{Name: "custom", Width: w, Height: h}}, presets...), 0, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	tf, err := config.LoadTourFile(tourPath)
	if err != nil {
		return err
	}
	if tf.Page == nil {
		return fmt.Errorf("%s: preview needs a 'page' section describing the simulated layout", tourPath)
	}

	presets, start, err := previewPresets(previewSize)
	if err != nil {
		return err
	}

	var st store.Store = store.NewMemory()
	if cmd.Flags().Changed("store") {
		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if st, err = store.Open(storeName, reg, dbPath); err != nil {
			return err
		}
	}
	defer func() { _ = st.Close() }()

	h := layout.NewHost(*tf.Page, presets[start].Width, presets[start].Height)
	opts := tour.Options{Definition: tf.Definition, Host: h, Store: st}
	tf.Timing.Apply(&opts)

	engine, err := tour.New(opts)
	if err != nil {
		return err
	}
	engine.Start()
	defer engine.Stop()

	return preview.Run(engine, h, presets, start, force)
}

// --- place ---

var (
	placeViewport    string
	placeScroll      string
	placeTarget      string
	placeSide        string
	placeFixedBottom bool
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Compute a panel placement",
	Long: `Compute where the tour panel goes for one viewport and target.

The target rectangle is relative to the viewport (as returned by
getBoundingClientRect). Without --target the panel is bottom-anchored, as
for a step with no target. The result is in page coordinates.`,
	Example: `  # Panel below a target on a desktop window
  tourguide place --viewport 1280x800 --target 100,500,200,40

  # Side placement that flips when there is no room
  tourguide place --viewport 1280x800 --target 100,1100,150,40 --side right

  # Scrolled page, JSON output
  tourguide place --viewport 390x844 --scroll 0,1200 --target 300,20,350,60 --json`,
	RunE: runPlace,
}

func init() {
	placeCmd.Flags().StringVar(&placeViewport, "viewport", "", "Viewport size WIDTHxHEIGHT (required)")
	placeCmd.Flags().StringVar(&placeScroll, "scroll", "0,0", "Scroll offset X,Y")
	placeCmd.Flags().StringVar(&placeTarget, "target", "", "Target rect TOP,LEFT,WIDTH,HEIGHT relative to the viewport")
	placeCmd.Flags().StringVar(&placeSide, "side", "", "Preferred side (top, bottom, left, right, center)")
	placeCmd.Flags().BoolVar(&placeFixedBottom, "fixed-bottom", false, "Force the bottom-anchored layout")
	placeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	_ = placeCmd.MarkFlagRequired("viewport")
}

func runPlace(cmd *cobra.Command, args []string) error {
	w, h, err := parseSize(placeViewport)
	if err != nil {
		return err
	}
	scroll, err := parsePoint(placeScroll)
	if err != nil {
		return err
	}
	side, err := placement.ParseSide(placeSide)
	if err != nil {
		return err
	}

	var target *geom.Rect
	if placeTarget != "" {
		r, err := parseRect(placeTarget)
		if err != nil {
			return err
		}
		target = &r
	}

	snap := viewport.NewSnapshot(w, h)
	res := placement.Place(placement.Input{
		Target:      target,
		Viewport:    snap,
		Scroll:      scroll,
		Side:        side,
		FixedBottom: placeFixedBottom,
	})

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	params := []ui.Param{
		{Key: "Viewport", Value: snap.String()},
		{Key: "Scroll", Value: fmt.Sprintf("%.0f,%.0f", scroll.X, scroll.Y)},
	}
	if target != nil {
		params = append(params, ui.Param{Key: "Target", Value: target.String()})
	}
	fmt.Println(ui.NewHeader("Placement", "tourguide place", params).Render())
	fmt.Println(ui.NewPlacementBox(res, snap, scroll, target).Render())
	return nil
}

// --- status / reset ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List finished tours",
	Long: `List the tours recorded as completed or skipped in the completion store.

A finished tour is not shown again until it is reset.`,
	Example: `  tourguide status
  tourguide status --store sqlite --json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&storeName, "store", store.BackendYAML, "Completion store (yaml, sqlite)")
	statusCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	st, err := openStore(cmd, reg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records, err := st.Records()
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []store.Record{}
		}
		return enc.Encode(records)
	}
	fmt.Println(ui.NewStatusTable(records, storeSource(cmd, reg)).Render())
	return nil
}

var (
	resetAll  bool
	assumeYes bool
)

var resetCmd = &cobra.Command{
	Use:   "reset [TOUR_KEY...]",
	Short: "Clear completion flags so tours show again",
	Example: `  # Show the onboarding tour again
  tourguide reset onboarding

  # Clear every flag without prompting
  tourguide reset --all --yes`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().StringVar(&storeName, "store", store.BackendYAML, "Completion store (yaml, sqlite)")
	resetCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Reset every recorded tour")
	resetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !resetAll {
		return fmt.Errorf("name at least one tour key or pass --all")
	}

	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	st, err := openStore(cmd, reg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	keys := args
	if resetAll {
		records, err := st.Records()
		if err != nil {
			return fmt.Errorf("failed to read records: %w", err)
		}
		keys = keys[:0:0]
		for _, r := range records {
			keys = append(keys, r.Key)
		}
	}
	if len(keys) == 0 {
		fmt.Println(ui.NewWarningResult("Nothing to reset", ui.Param{Key: "Store", Value: storeSource(cmd, reg)}).Render())
		return nil
	}

	if !assumeYes && !ui.ConfirmReset(os.Stdin, os.Stdout, keys) {
		return nil
	}

	result := ui.NewSuccessResult("Completion flags cleared")
	for _, k := range keys {
		ok, err := st.Reset(k)
		if err != nil {
			return fmt.Errorf("failed to reset %s: %w", k, err)
		}
		state := "cleared"
		if !ok {
			state = "not recorded"
		}
		result.AddDetail(k, state)
	}
	fmt.Println(result.Render())
	return nil
}

// --- scan / watch ---

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find tour bridges on the network",
	Long: `Browse mDNS for running tour bridges (started with 'run --advertise').

Found bridges are remembered in the registry.`,
	Example: `  tourguide scan
  tourguide scan --timeout 10`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default: registry preference)")
}

func discoverTimeout(reg *config.Registry) time.Duration {
	secs := scanTimeout
	if secs <= 0 && reg != nil && reg.Preferences != nil {
		secs = reg.Preferences.DiscoverTimeout
	}
	if secs <= 0 {
		return discovery.DefaultScanTimeout
	}
	return time.Duration(secs) * time.Second
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	timeout := discoverTimeout(reg)
	fmt.Printf("Scanning for tour bridges (timeout: %s)...\n\n", timeout)

	bridges, err := discovery.ScanForBridges(timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println(ui.NewFailureResult("No bridges found", nil,
			"Start one with 'tourguide run --listen :8787 --advertise'",
			"Check that both machines are on the same network segment",
			"Allow mDNS (UDP port 5353) through the firewall",
			"Try increasing --timeout",
		).Render())
		return nil
	}

	result := ui.NewSuccessResult(fmt.Sprintf("Found %d bridge(s)", len(bridges)))
	for _, b := range bridges {
		result.AddDetail(b.Tour(), b.Addr()+"  "+b.GetMetadata(discovery.TxtName))
		reg.UpdateBridgeLastSeen(b.Instance, b.Addr(), b.Tour())
	}
	fmt.Println(result.Render())

	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save registry", zap.Error(err))
	}
	fmt.Println("Use 'tourguide watch --addr <host:port>' to follow a bridge")
	return nil
}

var (
	watchAddr string
	watchTour string
	watchSend string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow or drive a running tour bridge",
	Long: `Connect to a tour bridge and print its events, or send one intent.

The bridge is found by --addr, or by tour key over mDNS with --tour.`,
	Example: `  # Stream events
  tourguide watch --addr 192.168.1.20:8787

  # Advance the tour on another machine
  tourguide watch --tour onboarding --send next`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "", "Bridge address host:port")
	watchCmd.Flags().StringVar(&watchTour, "tour", "", "Find the bridge for this tour key over mDNS")
	watchCmd.Flags().StringVar(&watchSend, "send", "", "Send an intent (next, back, skip, close) and exit")
	watchCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Discovery timeout in seconds")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := watchAddr
	if addr == "" {
		if watchTour == "" {
			return fmt.Errorf("pass --addr or --tour")
		}
		reg, err := loadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		scanner := discovery.NewScanner()
		scanner.Timeout = discoverTimeout(reg)
		b, err := scanner.WaitForBridge(ctx, watchTour)
		if err != nil {
			return err
		}
		addr = b.Addr()
	}

	if watchSend != "" {
		switch watchSend {
		case "next", "back", "skip", "close":
		default:
			return fmt.Errorf("unknown intent %q (want next, back, skip or close)", watchSend)
		}
	}

	c, err := server.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if watchSend != "" {
		if err := c.SendIntent(watchSend); err != nil {
			return fmt.Errorf("failed to send intent: %w", err)
		}
		fmt.Printf("Sent %s to %s\n", watchSend, addr)
		return nil
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n\n", addr)
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	for {
		msg, err := c.Read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bridge connection lost: %w", err)
		}
		fmt.Println(describeMessage(msg))
	}
}

// describeMessage renders one bridge message as a line of text.
func describeMessage(msg server.Message) string {
	switch msg.Type {
	case server.TypeStepChanged:
		idx := 0
		if msg.Index != nil {
			idx = *msg.Index
		}
		title := ""
		if msg.Step != nil {
			title = msg.Step.Title
			if title == "" {
				title = msg.Step.ID
			}
		}
		return fmt.Sprintf("step %d/%d  %s", idx+1, msg.Total, title)
	case server.TypeFrame:
		if msg.Frame == nil {
			return "frame"
		}
		f := msg.Frame
		if f.Pending {
			return fmt.Sprintf("  frame #%d pending", f.PositionKey)
		}
		return fmt.Sprintf("  frame #%d %s at %.0f,%.0f (%s, target found: %v)",
			f.PositionKey, f.Placement.Layout, f.Placement.Top, f.Placement.Left, f.Viewport.Class, f.TargetFound)
	default:
		return string(msg.Type)
	}
}
