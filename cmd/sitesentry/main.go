package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitesentry/sitesentry/internal/analyzer"
	"github.com/sitesentry/sitesentry/internal/browser"
	"github.com/sitesentry/sitesentry/internal/evidence"
	"github.com/sitesentry/sitesentry/internal/explorer"
	"github.com/sitesentry/sitesentry/internal/inspect"
	"github.com/sitesentry/sitesentry/internal/logger"
	"github.com/sitesentry/sitesentry/internal/metrics"
	"github.com/sitesentry/sitesentry/internal/output"
	"github.com/sitesentry/sitesentry/internal/progress"
	"github.com/sitesentry/sitesentry/internal/ratelimit"
	"github.com/sitesentry/sitesentry/internal/shutdown"
	"github.com/sitesentry/sitesentry/internal/state"
	"github.com/sitesentry/sitesentry/pkg/scanner"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Scan flags
	maxDepth    int
	maxPages    int
	maxRetries  int
	retryDelay  time.Duration
	rateLimit   float64
	navTimeout  int
	outputFile  string
	evidenceDir string
	stateFile   string
	userAgent   string
	headless    bool

	// Display flags
	noProgress bool
	prettyJSON bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitesentry",
		Short: "SiteSentry - UI Bug Scanner",
		Long: `SiteSentry - A site traversal and structured page-exploration engine.

Crawls a site breadth-first within depth and page bounds, and on every page
exercises forms, dropdowns, modals, and accordions across desktop, tablet,
and mobile viewports. Findings carry screenshots and a step-by-step
reproduction trail.`,
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Scan a site for UI bugs",
		Long:  "Crawl a site from the seed URL and explore each page for UI defects.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume an interrupted scan",
		Long:  "Resume a previously interrupted scan from a saved state file.",
		RunE:  runResume,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	// Scan flags
	scanCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", 3, "Maximum link depth from the seed")
	scanCmd.Flags().IntVarP(&maxPages, "max-pages", "p", 50, "Maximum pages to inspect")
	scanCmd.Flags().IntVar(&maxRetries, "retries", 3, "Inspection attempts per page")
	scanCmd.Flags().DurationVar(&retryDelay, "retry-delay", 500*time.Millisecond, "Pause between inspection attempts")
	scanCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 1, "Maximum page inspections per second (0 disables)")
	scanCmd.Flags().IntVarP(&navTimeout, "timeout", "t", 30, "Page navigation timeout in seconds")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report file (default: stdout)")
	scanCmd.Flags().StringVar(&evidenceDir, "evidence-dir", "evidence", "Directory for screenshots")
	scanCmd.Flags().StringVar(&stateFile, "state-file", "", "State file for resumable scans")
	scanCmd.Flags().StringVar(&userAgent, "user-agent", "", "Override the browser user agent")
	scanCmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	scanCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (use verbose logging instead)")
	scanCmd.Flags().BoolVar(&prettyJSON, "pretty", false, "Indent the JSON report")

	// Resume flags
	resumeCmd.Flags().StringVar(&stateFile, "state-file", "", "State file to resume from")
	resumeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report file (default: stdout)")
	resumeCmd.Flags().StringVar(&evidenceDir, "evidence-dir", "evidence", "Directory for screenshots")
	resumeCmd.Flags().IntVarP(&maxPages, "max-pages", "p", 50, "Maximum pages to inspect")
	resumeCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar")
	resumeCmd.Flags().BoolVar(&prettyJSON, "pretty", false, "Indent the JSON report")
	resumeCmd.MarkFlagRequired("state-file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resumeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command, seed string) (*scanner.Config, error) {
	config := scanner.DefaultConfig()
	if configFile != "" {
		loaded, err := scanner.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config = loaded
	}
	if seed != "" {
		config.Seed = seed
	}

	// Command-line flags override the config file when set.
	if cmd.Flags().Changed("max-depth") {
		config.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("max-pages") {
		config.MaxPages = maxPages
	}
	if cmd.Flags().Changed("retries") {
		config.MaxRetries = maxRetries
	}
	if cmd.Flags().Changed("retry-delay") {
		config.RetryDelay = retryDelay
	}
	if cmd.Flags().Changed("rate-limit") {
		config.RateLimit = rateLimit
	}
	if cmd.Flags().Changed("timeout") {
		config.Inspect.NavigationTimeout = time.Duration(navTimeout) * time.Second
	}
	if cmd.Flags().Changed("evidence-dir") {
		config.EvidenceDir = evidenceDir
	}
	if cmd.Flags().Changed("state-file") {
		config.StateFile = stateFile
	}
	if cmd.Flags().Changed("user-agent") {
		config.Browser.UserAgent = userAgent
	}
	if cmd.Flags().Changed("headless") {
		config.Browser.Headless = headless
	}
	config.Verbose = verbose
	config.Debug = debug

	return config, nil
}

func newLogger(enableProgress bool) *logger.Logger {
	cfg := logger.DefaultConfig()
	switch {
	case debug:
		cfg.Level = logger.DebugLevel
	case verbose:
		cfg.Level = logger.InfoLevel
	case enableProgress:
		// The progress line owns the terminal; only surface problems.
		cfg.Level = logger.ErrorLevel
	default:
		cfg.Level = logger.WarnLevel
	}
	return logger.New(cfg)
}

// scanStack is everything runScan and runResume share.
type scanStack struct {
	config  *scanner.Config
	log     *logger.Logger
	metrics *metrics.Collector
	driver  *browser.RodDriver
	store   state.Store
	display *progress.Display
	scanner *scanner.Scanner
	handler *shutdown.Handler
}

func buildStack(config *scanner.Config, enableProgress bool) (*scanStack, error) {
	log := newLogger(enableProgress)
	m := metrics.New()

	driver, err := browser.NewRodDriver(config.Browser)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	ev, err := evidence.NewCollector(config.EvidenceDir, log.WithComponent("evidence"))
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to prepare evidence directory: %w", err)
	}

	exCfg := explorer.DefaultConfig()
	ex := explorer.New(exCfg, analyzer.Noop{}, log.WithComponent("explorer"), m)
	inspector := inspect.New(config.Inspect, driver, ex, ev, log.WithComponent("inspect"), m)

	var display *progress.Display
	opts := []scanner.Option{
		scanner.WithConfig(config),
		scanner.WithInspector(inspector),
		scanner.WithLogger(log.WithComponent("scanner")),
		scanner.WithMetrics(m),
	}

	if config.RateLimit > 0 {
		opts = append(opts, scanner.WithPacer(ratelimit.NewPacer(config.RateLimit, 1)))
	}

	var store state.Store
	if config.StateFile != "" {
		bolt, err := state.NewBoltStore(config.StateFile)
		if err != nil {
			driver.Close()
			return nil, fmt.Errorf("failed to open state file: %w", err)
		}
		store = bolt
		opts = append(opts, scanner.WithStateStore(store))
	}

	if enableProgress {
		display = progress.New()
		opts = append(opts, scanner.WithProgress(func(url string, visited, queued int) {
			snap := m.Snapshot()
			pending := queued - visited
			if pending < 0 {
				pending = 0
			}
			display.Update(visited, pending, int(snap.FindingsTotal), int(snap.PagesFailed))
		}))
	}

	s, err := scanner.New(opts...)
	if err != nil {
		driver.Close()
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	handler := shutdown.New(shutdown.Config{
		Timeout: 30 * time.Second,
		OnShutdownStart: func() {
			fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		},
	})
	handler.ListenAndShutdown()

	return &scanStack{
		config:  config,
		log:     log,
		metrics: m,
		driver:  driver,
		store:   store,
		display: display,
		scanner: s,
		handler: handler,
	}, nil
}

func (st *scanStack) close() {
	st.driver.Close()
	if st.store != nil {
		st.store.Close()
	}
}

func (st *scanStack) writeReport(report *scanner.CrawlReport) error {
	if outputFile != "" {
		if err := output.WriteReportFile(outputFile, report, true); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
		return nil
	}
	return output.NewJSONWriter(os.Stdout, prettyJSON).WriteReport(report)
}

func runScan(cmd *cobra.Command, args []string) error {
	config, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	enableProgress := !noProgress && !verbose && !debug
	st, err := buildStack(config, enableProgress)
	if err != nil {
		return err
	}
	defer st.close()

	if enableProgress {
		fmt.Fprintf(os.Stderr, "SiteSentry v%s - scanning %s\n", version, config.Seed)
		st.display.Start(config.Seed, config.MaxPages)
	} else {
		printBanner(config)
	}

	report, err := st.scanner.Crawl(st.handler.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if enableProgress {
		st.display.Stop()
		st.display.PrintSummary()
	} else {
		printSummary(report)
	}

	return st.writeReport(report)
}

func runResume(cmd *cobra.Command, args []string) error {
	store, err := state.NewBoltStore(stateFile)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	saved, err := store.Load()
	store.Close()
	if err != nil {
		return fmt.Errorf("failed to load saved state: %w", err)
	}
	if saved == nil {
		return fmt.Errorf("no saved scan in %s", stateFile)
	}

	config, err := buildConfig(cmd, saved.SeedURL)
	if err != nil {
		return err
	}
	config.StateFile = stateFile
	if err := config.Validate(); err != nil {
		return err
	}

	enableProgress := !noProgress && !verbose && !debug
	st, err := buildStack(config, enableProgress)
	if err != nil {
		return err
	}
	defer st.close()

	fmt.Fprintf(os.Stderr, "Resuming scan of %s from %s\n", saved.SeedURL, stateFile)
	if enableProgress {
		st.display.Start(config.Seed, config.MaxPages)
	}

	report, err := st.scanner.Resume(st.handler.Context(), saved)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if enableProgress {
		st.display.Stop()
		st.display.PrintSummary()
	} else {
		printSummary(report)
	}

	return st.writeReport(report)
}

func printBanner(config *scanner.Config) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "SiteSentry v%s\n", version)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Seed:       %s\n", config.Seed)
	fmt.Fprintf(os.Stderr, "Max Depth:  %d\n", config.MaxDepth)
	fmt.Fprintf(os.Stderr, "Max Pages:  %d\n", config.MaxPages)
	fmt.Fprintf(os.Stderr, "Evidence:   %s\n", config.EvidenceDir)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Starting scan...")
	fmt.Fprintln(os.Stderr)
}

func printSummary(report *scanner.CrawlReport) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Scan complete\n")
	fmt.Fprintf(os.Stderr, "  Pages Inspected: %d\n", report.PagesTotal)
	fmt.Fprintf(os.Stderr, "  Findings:        %d\n", report.BugsTotal)
	fmt.Fprintln(os.Stderr)
}
