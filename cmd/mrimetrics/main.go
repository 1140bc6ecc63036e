package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"mrimetrics/internal/logger"
	"mrimetrics/internal/models"
	"mrimetrics/pkg/analysis"
	"mrimetrics/pkg/config"
	"mrimetrics/pkg/filters"
	"mrimetrics/pkg/input"
	"mrimetrics/pkg/metrics"
	"mrimetrics/pkg/navigator"
	"mrimetrics/pkg/visualization"
)

var errInvalidArgumentCount = errors.New("expected exactly one input path")

type options struct {
	configPath string
	initConfig string
	exportDir  string
	exportAxis string
	reportFile string
	noDisplay  bool
	verbose    bool
	inputPath  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return 1
	}

	if opts.initConfig != "" {
		if err := config.CreateDefaultConfigFile(opts.initConfig); err != nil {
			fmt.Fprintf(stderr, "Failed to write config: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Default configuration written to %s\n", opts.initConfig)
		return 0
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid options: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Output.Verbose)

	kind, err := input.Validate(opts.inputPath)
	if err != nil {
		log.Error().Err(err).Str("path", opts.inputPath).Msg("invalid input")
		return 1
	}

	fmt.Fprintln(stdout, "================================")
	fmt.Fprintln(stdout, "MRI SIGNAL-TO-NOISE METRICS")
	fmt.Fprintf(stdout, "Input: %s (%s)\n", opts.inputPath, kind)
	fmt.Fprintln(stdout, "================================")

	params := &analysis.Params{
		InputPath: opts.inputPath,
		Kind:      kind,
		Filters: filters.Params{
			Sigma:        cfg.Filters.GaussianSigma,
			RadiusFactor: cfg.Filters.GaussianRadiusFactor,
			MedianKernel: cfg.Filters.MedianKernel,
			Workers:      cfg.Filters.Workers,
		},
	}
	if cfg.Statistics.FullExtent {
		params.Statistics.Extent = metrics.FullExtent
	}

	// Key table problems surface before the slow pipeline runs
	bindings, err := navigator.BindingsFromConfig(cfg.Display.Keys)
	if err != nil {
		log.Error().Err(err).Msg("invalid key bindings")
		return 1
	}

	analyzer := analysis.NewAnalyzer(params, log)
	if err := analyzer.Load(); err != nil {
		log.Error().Err(err).Msg("cannot read input")
		return 1
	}

	interval, err := readThresholds(stdin, stdout)
	if err != nil {
		log.Error().Err(err).Msg("invalid threshold")
		return 1
	}

	startTime := time.Now()
	if err := analyzer.Process(interval); err != nil {
		log.Error().Err(err).Msg("analysis failed")
		return 1
	}
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("analysis completed")

	fmt.Fprintln(stdout)
	if err := analyzer.WriteReport(stdout); err != nil {
		log.Error().Err(err).Msg("failed to print report")
		return 1
	}

	if cfg.Output.ReportFile != "" {
		if err := analyzer.SaveReportCSV(cfg.Output.ReportFile); err != nil {
			log.Error().Err(err).Msg("failed to save report")
			return 1
		}
		log.Info().Str("file", cfg.Output.ReportFile).Msg("report saved")
	}

	level, window := displayWindow(cfg, analyzer.Summary())

	if cfg.Output.ExportDir != "" {
		if err := export(cfg, analyzer, visualization.Windowing{Level: level, Window: window}, log); err != nil {
			log.Error().Err(err).Msg("export failed")
			return 1
		}
	}

	if opts.noDisplay {
		return 0
	}

	if err := display(cfg, analyzer, bindings, level, window, log); err != nil {
		log.Error().Err(err).Msg("cannot open viewer")
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("mrimetrics", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.initConfig, "init-config", "", "Write a default configuration file and exit")
	fs.StringVar(&opts.exportDir, "export", "", "Directory to export per-slice JPEGs of every variant")
	fs.StringVar(&opts.exportAxis, "export-axis", "", "Slicing axis of exported JPEGs: x, y or z")
	fs.StringVar(&opts.reportFile, "report", "", "CSV file to save the statistics table")
	fs.BoolVar(&opts.noDisplay, "no-display", false, "Print the report without opening the viewer")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mrimetrics [flags] <dicom-dir|file.dcm|file.nii>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.initConfig != "" {
		return opts, nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errInvalidArgumentCount
	}
	opts.inputPath = fs.Arg(0)

	return opts, nil
}

func applyOverrides(cfg *config.Config, opts *options) {
	if opts.exportDir != "" {
		cfg.Output.ExportDir = opts.exportDir
	}
	if opts.exportAxis != "" {
		cfg.Output.ExportAxis = opts.exportAxis
	}
	if opts.reportFile != "" {
		cfg.Output.ReportFile = opts.reportFile
	}
	if opts.verbose {
		cfg.Output.Verbose = true
	}
}

// readThresholds prompts for the lower and upper bound. No ordering is
// enforced; an inverted pair yields an empty foreground.
func readThresholds(r io.Reader, w io.Writer) (models.ThresholdInterval, error) {
	in := bufio.NewReader(r)

	var lower, upper int
	fmt.Fprint(w, "Lower Threshold = ")
	if _, err := fmt.Fscan(in, &lower); err != nil {
		return models.ThresholdInterval{}, fmt.Errorf("reading lower threshold: %w", err)
	}

	fmt.Fprint(w, "Upper Threshold = ")
	if _, err := fmt.Fscan(in, &upper); err != nil {
		return models.ThresholdInterval{}, fmt.Errorf("reading upper threshold: %w", err)
	}

	return models.ThresholdInterval{Lower: float64(lower), Upper: float64(upper)}, nil
}

func displayWindow(cfg *config.Config, summary metrics.Summary) (level, window float64) {
	if cfg.Display.AutoWindow {
		return summary.RobustWindow()
	}
	return cfg.Display.ColorLevel, cfg.Display.ColorWindow
}

func variantVolumes(a *analysis.Analyzer) map[models.Variant]*models.Volume {
	vols := make(map[models.Variant]*models.Volume)
	for _, v := range []models.Variant{models.Original, models.Gaussian, models.Median, models.Segmentation} {
		vols[v] = a.Volume(v)
	}
	return vols
}

func export(cfg *config.Config, a *analysis.Analyzer, windowing visualization.Windowing, log zerolog.Logger) error {
	set := visualization.ExportSet{
		Volumes:   variantVolumes(a),
		Windowing: windowing,
		Axis:      cfg.Output.ExportAxis,
		Interval:  a.Interval(),
	}

	hist, err := metrics.NewHistogram(a.Volume(models.Original), cfg.Output.HistogramBins)
	if err != nil {
		log.Warn().Err(err).Msg("skipping histogram")
	} else {
		set.Histogram = &hist
	}

	return visualization.Export(cfg.Output.ExportDir, set, log)
}

func display(cfg *config.Config, a *analysis.Analyzer, bindings navigator.Bindings, level, window float64, log zerolog.Logger) error {
	variants, err := visualization.LayoutVariants(cfg.Display.Viewports)
	if err != nil {
		return err
	}

	surfaces := make([]*visualization.ImageSurface, 0, len(variants))
	for _, v := range variants {
		surfaces = append(surfaces, visualization.NewImageSurface(v.String(), visualization.NewViewer(a.Volume(v), level, window)))
	}

	win, err := visualization.NewWindow(visualization.WindowConfig{
		Title:  "mrimetrics",
		Width:  float32(cfg.Display.WindowWidth),
		Height: float32(cfg.Display.WindowHeight),
	}, surfaces, log)
	if err != nil {
		return err
	}

	depth := a.Volume(models.Original).Depth
	nav := navigator.New(0, depth-1, win)
	nav.SetStep(cfg.Display.Step)
	for i, s := range surfaces {
		nav.Track(s, visualization.Windowed(variants[i]))
	}
	win.Attach(nav, bindings)

	win.ShowAndRun()
	return nil
}
