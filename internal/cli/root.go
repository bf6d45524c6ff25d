package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/uvcview/internal/config"
	"github.com/Paintersrp/uvcview/internal/engine"
	"github.com/Paintersrp/uvcview/internal/launch"
	"github.com/Paintersrp/uvcview/internal/runtime"
)

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	ctx := &context{
		fs:        afero.NewOsFs(),
		baseDir:   launch.BaseDir,
		lookupEnv: os.LookupEnv,
	}

	root := &cobra.Command{
		Use:   "uvcview",
		Short: "Launch and stop ffplay for a UVC capture device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd, ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Path to configuration file (default: uvcview.yaml next to the binary)")
	flags.StringVar(&ctx.player, "player", "", "Path to the ffplay executable")
	flags.StringVar(&ctx.device, "device", "", "Capture device name")
	flags.StringVar(&ctx.logDir, "log-dir", "", "Directory for daily log files")
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&ctx.metricsAddr, "metrics-addr", "", "Address for the status and metrics endpoint")
	flags.DurationVar(&ctx.stopTimeout, "stop-timeout", 0, "How long the player may take to close before it is killed")

	root.AddCommand(newCheckCmd(ctx))
	root.AddCommand(newPlayCmd(ctx))
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type context struct {
	configPath  string
	player      string
	device      string
	logDir      string
	logLevel    string
	metricsAddr string
	stopTimeout time.Duration

	fs        afero.Fs
	baseDir   func() (string, error)
	lookupEnv func(string) (string, bool)
	// runtime overrides the process runtime; nil uses the default.
	runtime runtime.Runtime
}

// settings is a resolved configuration together with where it came from.
type settings struct {
	cfg        *config.Config
	path       string
	found      bool
	base       string
	executable string
}

// loadSettings layers the file, UVCVIEW_* variables and flags, in that order.
func (c *context) loadSettings(cmd *cobra.Command) (*settings, error) {
	base, err := c.baseDir()
	if err != nil {
		return nil, err
	}

	path := c.configPath
	var (
		cfg   *config.Config
		found bool
	)
	if path != "" {
		cfg, err = config.Load(c.fs, path)
		found = err == nil
	} else {
		path = filepath.Join(base, config.DefaultFileName)
		cfg, found, err = config.LoadOptional(c.fs, path)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(c.lookupEnv); err != nil {
		return nil, err
	}
	c.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &settings{
		cfg:        cfg,
		path:       path,
		found:      found,
		base:       base,
		executable: launch.Resolve(base, cfg.Player.Executable),
	}, nil
}

func (c *context) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	if changed("player") {
		cfg.Player.Executable = c.player
	}
	if changed("device") {
		cfg.Device = c.device
	}
	if changed("log-dir") {
		cfg.Logging.Directory = c.logDir
	}
	if changed("log-level") {
		cfg.Logging.Level = c.logLevel
	}
	if changed("metrics-addr") {
		cfg.Metrics.Address = c.metricsAddr
	}
	if changed("stop-timeout") {
		cfg.Player.StopTimeout = config.Duration{Duration: c.stopTimeout}
	}
}

func (c *context) newSupervisor(s *settings, logger logrus.FieldLogger) *engine.Supervisor {
	return engine.New(s.executable,
		engine.WithRuntime(c.runtime),
		engine.WithFs(c.fs),
		engine.WithStopTimeout(s.cfg.Player.StopTimeout.Duration),
		engine.WithLogger(logger),
	)
}
