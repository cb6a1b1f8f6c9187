package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/blackjack-trainer/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config string `short:"c" default:"blackjack.hcl" env:"BLACKJACK_CONFIG" help:"HCL config file (defaults are used when missing)"`
	Debug  bool   `env:"BLACKJACK_DEBUG" help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate sessions with a perfect-strategy bot"`
	Advise   AdviseCmd        `cmd:"" help:"Recommend a play for a hand"`
	Serve    ServeCmd         `cmd:"" help:"Serve a table over a loopback HTTP API"`
	History  HistoryCmd       `cmd:"" help:"List saved session summaries"`
}

func main() {
	// .env feeds BLACKJACK_* variables to the env tags below
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack strategy and card counting trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// logger returns the stderr logger for a command
func (g *Globals) logger() *log.Logger {
	level := log.InfoLevel
	if g.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}

// load reads the config file named by --config
func (g *Globals) load(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	logger.Debug("Config loaded", "path", g.Config, "rules", cfg.Rules.Variant())
	return cfg, nil
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
