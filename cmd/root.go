package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/displaywake/internal/config"
	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/logger"
	"github.com/bnema/displaywake/internal/wake"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version info set at build time
	Version = "0.1.0-dev"
	Commit  = "none"
	Date    = "unknown"

	// openPlatform is replaced in tests
	openPlatform = display.New
)

// app is the state shared by the command tree
type app struct {
	v         *viper.Viper
	cfg       *config.Config
	logCloser io.Closer
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "displaywake",
		Short: "displaywake - bring special-purpose displays up",
		Long: `displaywake finds display outputs reserved for special use (head-mounted
displays, kiosk panels, outputs listed with --special), switches each one on at
its smallest mode and keeps it active until interrupted.`,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWake(ctx, a.cfg)
		},
	}

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.String("backend", config.DefaultConfig.Backend, "Display backend (auto, x11, wlr-randr)")
	flags.String("display", "", "X display to connect to (default $DISPLAY)")
	flags.StringSlice("special", nil, "Output name glob to treat as special-purpose (repeatable)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Log file used with --no-console (default state dir)")
	flags.Bool("no-console", false, "Write diagnostics to the log file instead of the terminal")
	flags.Duration("call-timeout", 0, "Bound every display call, 0 waits forever")
	flags.Bool("min", false, "Consider every mode, not only the preferred resolution")

	rootCmd.Flags().Bool("exit-after-wake", false, "Release displays and exit instead of holding them")

	bindFlag(a.v, config.KeyBackend, flags, "backend")
	bindFlag(a.v, config.KeyX11Display, flags, "display")
	bindFlag(a.v, config.KeySpecialOutputs, flags, "special")
	bindFlag(a.v, config.KeyLogLevel, flags, "log-level")
	bindFlag(a.v, config.KeyLogFile, flags, "log-file")
	bindFlag(a.v, config.KeyNoConsole, flags, "no-console")
	bindFlag(a.v, config.KeyCallTimeout, flags, "call-timeout")
	bindFlag(a.v, config.KeyAllModes, flags, "min")
	bindFlag(a.v, config.KeyExitAfterWake, rootCmd.Flags(), "exit-after-wake")

	rootCmd.AddCommand(newTargetsCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func bindFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// closeLog points the logger back at the terminal before closing the file
func (a *app) closeLog() {
	if a.logCloser == nil {
		return
	}
	logger.SetOutput(os.Stderr)
	a.logCloser.Close()
	a.logCloser = nil
}

// setup loads the configuration and routes diagnostics
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			return err
		}
	}

	if cfg.NoConsole {
		path := cfg.LogFile
		if path == "" {
			path = logger.DefaultLogFile()
		}
		f, err := logger.OpenLogFile(path)
		if err != nil {
			return err
		}
		a.logCloser = f
	}
	return nil
}

func platformOptions(cfg *config.Config) display.Options {
	return display.Options{
		Backend:        cfg.Backend,
		X11Display:     cfg.X11Display,
		SpecialOutputs: cfg.SpecialOutputs,
	}
}

func runWake(ctx context.Context, cfg *config.Config) error {
	platform, err := openPlatform(platformOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to open display backend: %w", err)
	}
	defer platform.Close()
	logger.Info("Display backend ready", "backend", platform.Name())

	orchestrator := wake.NewOrchestrator(platform, wake.Options{CallTimeout: cfg.CallTimeout})
	opts := wake.DefaultRunOptions
	opts.PreferredOnly = cfg.PreferredOnly()
	opts.ExitAfterWake = cfg.ExitAfterWake

	return wake.NewRunner(platform, orchestrator, opts).Run(ctx)
}
