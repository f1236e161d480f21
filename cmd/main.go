package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/growtho/internal/adapters/blob"
	"github.com/okian/growtho/internal/adapters/blob/core"
	"github.com/okian/growtho/internal/adapters/blob/s3"
	"github.com/okian/growtho/internal/adapters/prepared"
	app "github.com/okian/growtho/internal/app"
	"github.com/okian/growtho/internal/config"
	"github.com/okian/growtho/internal/domain/modelinput"
	"github.com/okian/growtho/internal/domain/prepare"
	"github.com/okian/growtho/pkg/logger"
	"github.com/okian/growtho/pkg/metrics"
)

// Process exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: growtho <command> [flags]

commands:
  prepare      prepare the raw table with each configured recipe
  model-input  write the model input JSON of a prepared directory
  recipes      list the compiled-in recipes

configuration: defaults, then the YAML file in $GROWTHO_CONFIG, then
GROWTHO_* environment variables, then command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code. Data goes to
// stdout, diagnostics to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFail
	}
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitFail
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintln(stderr, "invalid log level:", err)
		return exitFail
	}

	switch args[0] {
	case "prepare":
		return runPrepare(ctx, cfg, args[1:], stderr)
	case "model-input":
		return runModelInput(ctx, args[1:], stdout, stderr)
	case "recipes":
		reg, err := registryFor(cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFail
		}
		fmt.Fprintln(stdout, strings.Join(reg.Names(), "\n"))
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
}

func runPrepare(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		rawFile         = fs.String("raw", cfg.RawFile, "Raw wide-format CSV file")
		preparedDir     = fs.String("out", cfg.PreparedDir, "Directory holding one prepared dataset per recipe")
		recipes         = fs.String("recipes", strings.Join(cfg.Recipes, ","), "Comma separated recipes to run")
		continueOnError = fs.Bool("continue-on-error", cfg.ContinueOnError, "Run the remaining recipes after a failure")
		metricsFile     = fs.String("metrics-file", cfg.MetricsFile, "Write Prometheus textfile metrics here")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	cfg.RawFile, cfg.PreparedDir, cfg.ContinueOnError, cfg.MetricsFile = *rawFile, *preparedDir, *continueOnError, *metricsFile
	cfg.Recipes = strings.Split(*recipes, ",")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logger.Named("cli")
	reg, err := registryFor(cfg)
	if err != nil {
		log.Error(ctx, "build recipe registry failed", logger.Error(err))
		return exitFail
	}
	blobs, err := blob.Open(ctx, blobConfig(cfg))
	if err != nil {
		log.Error(ctx, "open blob store failed", logger.String("driver", cfg.BlobDriver), logger.Error(err))
		return exitFail
	}

	pipeline := app.New(
		app.WithLogger(logger.Get()),
		app.WithRegistry(reg),
		app.WithStore(prepared.NewDirStore(prepared.WithRoot(cfg.PreparedDir))),
		app.WithBlobStore(blobs),
		app.WithMetrics(metrics.Default()),
		app.WithContinueOnError(cfg.ContinueOnError),
	)
	_, runErr := pipeline.RunFile(ctx, cfg.RawFile, cfg.Recipes)

	if cfg.MetricsFile != "" {
		if err := metrics.Default().WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "write metrics textfile failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}
	if runErr != nil {
		fmt.Fprintln(stderr, "prepare failed:", runErr)
		return exitFail
	}
	return exitOK
}

func runModelInput(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("model-input", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		dir = fs.String("dir", "", "Prepared dataset directory (required)")
		out = fs.String("out", "", "Output file (default: stdout)")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *dir == "" {
		fmt.Fprintln(stderr, "model-input: -dir is required")
		return exitUsage
	}

	in, err := app.LoadModelInput(ctx, *dir)
	if err != nil {
		fmt.Fprintln(stderr, "model-input failed:", err)
		return exitFail
	}
	if *out == "" {
		if err := modelinput.WriteJSON(stdout, in); err != nil {
			fmt.Fprintln(stderr, "model-input failed:", err)
			return exitFail
		}
		return exitOK
	}
	if err := writeModelInput(*out, in); err != nil {
		fmt.Fprintln(stderr, "model-input failed:", err)
		return exitFail
	}
	logger.Named("cli").Info(ctx, "model input written", logger.String("path", *out))
	return exitOK
}

func writeModelInput(path string, in modelinput.Input) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return modelinput.WriteJSON(f, in)
}

// registryFor applies the configured time rounding to every compiled-in recipe.
func registryFor(cfg *config.Config) (*prepare.Registry, error) {
	cfgs := prepare.DefaultConfigs()
	for i := range cfgs {
		cfgs[i].TimeDecimals = cfg.TimeDecimals
	}
	return prepare.RegistryFromConfigs(cfgs...)
}

func blobConfig(cfg *config.Config) blob.Config {
	return blob.Config{
		Driver: core.Driver(cfg.BlobDriver),
		Root:   cfg.BlobRoot,
		S3: s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
	}
}
