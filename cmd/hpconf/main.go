package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/hpconf/internal/application"
	"github.com/eugenenazirov/hpconf/internal/config"
	"github.com/eugenenazirov/hpconf/internal/hyperparams"
	"github.com/eugenenazirov/hpconf/internal/logging"
	"github.com/eugenenazirov/hpconf/internal/macpo"
)

var signalNotify = signal.Notify

type cli struct {
	app *kingpin.Application

	resolve        *kingpin.CmdClause
	resolveFile    *string
	resolveScen    *string
	resolveFormat  *string
	resolveTyped   *bool
	scenarios      *kingpin.CmdClause
	scenariosFile  *string
	serve          *kingpin.CmdClause
	configFile     *string
	document       *string
	port           *string
	serveScenario  *string
	watch          *bool
	logLevel       *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("hpconf", "MACPO hyperparameter configuration loader - resolves scenario overrides over global defaults")}

	c.resolve = c.app.Command("resolve", "Print the effective configuration for a scenario")
	c.resolveScen = c.resolve.Flag("scenario", "Scenario block to apply over the defaults").Envar("HPCONF_SCENARIO").String()
	c.resolveFormat = c.resolve.Flag("format", "Output format").Default("yaml").Enum("yaml", "json")
	c.resolveTyped = c.resolve.Flag("typed", "Decode and validate into MACPO settings before printing").Bool()
	c.resolveFile = c.resolve.Arg("file", "Hyperparameter document").Required().String()

	c.scenarios = c.app.Command("scenarios", "List the scenario blocks declared in a document")
	c.scenariosFile = c.scenarios.Arg("file", "Hyperparameter document").Required().String()

	c.serve = c.app.Command("serve", "Serve resolved configurations over HTTP").Default()
	c.configFile = c.serve.Flag("config", "Path to YAML configuration file").String()
	c.document = c.serve.Flag("document", "Path to the hyperparameter document").String()
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.serveScenario = c.serve.Flag("scenario", "Scenario the service expects to be present").String()
	c.watch = c.serve.Flag("watch", "Reload the document when the file changes").Bool()
	c.logLevel = c.serve.Flag("log-level", "Log level (debug, info, warn, error)").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	return c
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	switch command {
	case c.resolve.FullCommand():
		err := runResolve(os.Stdout, os.Stderr, *c.resolveFile, *c.resolveScen, *c.resolveFormat, *c.resolveTyped)
		c.app.FatalIfError(err, "resolve")
	case c.scenarios.FullCommand():
		c.app.FatalIfError(runScenarios(os.Stdout, *c.scenariosFile), "scenarios")
	case c.serve.FullCommand():
		runServe(c.serveOverrides())
	}
}

// serveOverrides keeps only the flags the user actually set so that
// lower-precedence sources are not clobbered by flag defaults.
func (c *cli) serveOverrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *c.configFile,
	}

	if *c.document != "" {
		overrides.DocumentPath = c.document
	}
	if *c.port != "" {
		overrides.Port = c.port
	}
	if *c.serveScenario != "" {
		overrides.Scenario = c.serveScenario
	}
	if *c.watch {
		overrides.Watch = c.watch
	}
	if *c.logLevel != "" {
		overrides.LogLevel = c.logLevel
	}
	if *c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = c.rateLimitRPS
	}
	if *c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = c.rateLimitBurst
	}
	return overrides
}

func runServe(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// runResolve writes the resolved config to w and notices to errw.
func runResolve(w, errw io.Writer, path, scenario, format string, typed bool) error {
	doc, err := hyperparams.Load(path)
	if err != nil {
		return err
	}

	scenario = strings.TrimSpace(scenario)
	if scenario != "" && !doc.HasScenario(scenario) {
		fmt.Fprintf(errw, "hpconf: scenario %q not found, using defaults\n", scenario)
	}
	cfg := doc.Resolve(scenario)

	if typed {
		settings, err := macpo.Decode(cfg)
		if err != nil {
			return err
		}
		return writeValue(w, format, settings)
	}

	if format == "json" {
		return writeValue(w, format, cfg)
	}
	out, err := hyperparams.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func runScenarios(w io.Writer, path string) error {
	doc, err := hyperparams.Load(path)
	if err != nil {
		return err
	}
	for _, name := range doc.Scenarios() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
