package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KilimcininKorOglu/ttlctl/internal/config"
	"github.com/KilimcininKorOglu/ttlctl/internal/logging"
	"github.com/KilimcininKorOglu/ttlctl/internal/output"
	"github.com/KilimcininKorOglu/ttlctl/internal/plugin"
	"github.com/KilimcininKorOglu/ttlctl/internal/sockopt"
	"github.com/KilimcininKorOglu/ttlctl/internal/sysctl"
	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
	"github.com/KilimcininKorOglu/ttlctl/internal/tui"
)

// errReported signals that the failure was already written to stdout in the
// selected output format.
var errReported = errors.New("error already reported")

var (
	// Flags
	backend    string
	sysctlPath string
	logLevel   string
	noColor    bool
	jsonOutput bool
	csvOutput  bool
	verbose    bool
	showKeys   bool

	// Config file
	cfgFile string
	cfg     *config.Config

	// Wired in loadConfig
	logger   *zap.SugaredLogger
	closeLog func() error
	store    sysctl.Store
	accessor *ttl.Accessor

	// Overridable in tests
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

var rootCmd = &cobra.Command{
	Use:   "ttlctl",
	Short: "Read and change the default IPv4 TTL and IPv6 hop limit",
	Long: `ttlctl - view and change the kernel's default TTL

ttlctl reads and writes net.ipv4.ip_default_ttl and
net.ipv6.conf.all.hop_limit through sysctl(8), /proc/sys or an
in-memory store, and can run as a plugin backend speaking
line-delimited JSON on stdin/stdout.

Examples:
  ttlctl                     Show current values
  ttlctl get --json          {"success": true, "result": {...}}
  sudo ttlctl set 65         Set both families to 65
  sudo ttlctl set windows    Use a preset from the config file
  ttlctl check               Compare with what new sockets inherit
  ttlctl tui                 Interactive panel
  ttlctl serve               Plugin backend on stdin/stdout
  ttlctl config --init       Create default config file`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              runGet,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func init() {
	// Config and backend flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/ttlctl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Kernel parameter backend: sysctl, procfs, memory")
	rootCmd.PersistentFlags().StringVar(&sysctlPath, "sysctl", "", "Path to the sysctl binary")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Output flags
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed table output")
	rootCmd.PersistentFlags().BoolVar(&csvOutput, "csv", false, "Output in CSV format")
	rootCmd.PersistentFlags().BoolVarP(&showKeys, "keys", "k", false, "Show sysctl keys")

	// Add subcommands
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(presetsCmd)
}

// loadSettings reads .env and the config file and merges the flags into it.
func loadSettings(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		cfg = nil
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyConfigDefaults(cmd)
	return nil
}

// loadConfig loads configuration, applies flag overrides and builds the
// logger, store and accessor.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}

	var err error
	logger, closeLog, err = logging.New(logging.Options{
		Level: cfg.Log.Level,
		Color: cfg.Log.Color && !noColor,
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err = sysctl.NewStore(cfg.Defaults.Backend, cfg.Defaults.SysctlPath)
	if err != nil {
		return err
	}
	accessor = ttl.New(store, logger)

	logger.Debugw("configured", "backend", cfg.Defaults.Backend, "sysctl", cfg.Defaults.SysctlPath)
	return nil
}

// applyConfigDefaults merges flags and config: explicit flags win, otherwise
// the config file value is used.
func applyConfigDefaults(cmd *cobra.Command) {
	if cfg == nil {
		return
	}

	defaults := &cfg.Defaults
	flags := cmd.Flags()

	if flags.Changed("backend") {
		defaults.Backend = backend
	}
	if flags.Changed("sysctl") {
		defaults.SysctlPath = sysctlPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if !flags.Changed("json") && defaults.JSON {
		jsonOutput = true
	}
	if !flags.Changed("verbose") && defaults.Verbose {
		verbose = true
	}
	if !flags.Changed("no-color") && defaults.NoColor {
		noColor = true
	}
	if noColor {
		color.NoColor = true
	}
}

// outputFormat picks the formatter from the output flags.
func outputFormat() output.Format {
	switch {
	case jsonOutput:
		return output.FormatJSON
	case csvOutput:
		return output.FormatCSV
	case verbose:
		return output.FormatVerbose
	default:
		return output.FormatText
	}
}

func newWriter() *output.Writer {
	return output.NewWriterTo(stdout, outputFormat(), output.Config{
		Colors:   !noColor,
		ShowKeys: showKeys,
	})
}

// reportError writes err in the selected output format when it has one.
func reportError(w *output.Writer, err error) error {
	if written, werr := w.WriteError(err); werr == nil && written {
		return errReported
	}
	return err
}

func backendName() string {
	switch {
	case cfg != nil && cfg.Defaults.Backend != "":
		return cfg.Defaults.Backend
	case backend != "":
		return backend
	default:
		return sysctl.BackendSysctl
	}
}

// loadSettingsQuiet is the pre-run of commands that must work with a broken
// config: they fall back to defaults instead of failing.
func loadSettingsQuiet(cmd *cobra.Command, args []string) error {
	_ = loadSettings(cmd)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current IPv4 TTL and IPv6 hop limit",
	Args:  cobra.NoArgs,
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	w := newWriter()

	reading, err := accessor.Get(commandContext(cmd))
	if err != nil {
		return reportError(w, err)
	}

	return w.Write(&output.Snapshot{
		Backend:   backendName(),
		Reading:   reading,
		Timestamp: time.Now(),
	})
}

var setCmd = &cobra.Command{
	Use:   "set <ttl|preset>",
	Short: "Set the IPv4 TTL and IPv6 hop limit",
	Long: `Set net.ipv4.ip_default_ttl and net.ipv6.conf.all.hop_limit.

The value is handed to the kernel as given; the kernel decides whether it
is acceptable. The IPv4 value is written first. If the IPv6 write then
fails, the IPv4 change stays in effect.

Named presets come from the "presets" section of the config file; list them
with "ttlctl presets".

A value starting with "-" must follow "--" so it is not read as a flag:

  ttlctl set -- -1`,
	Example: `  sudo ttlctl set 65
  sudo ttlctl set windows
  ttlctl --backend memory set -- -1`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	value := resolveValue(args[0])
	w := newWriter()

	if err := accessor.SetValue(commandContext(cmd), value); err != nil {
		return reportError(w, err)
	}

	if jsonOutput {
		_, err := fmt.Fprintln(stdout, `{"success": true}`)
		return err
	}

	msg := fmt.Sprintf("TTL set to %s", value)
	_, err := fmt.Fprint(stdout, output.NewTextFormatter(output.Config{Colors: !noColor && w.IsTTY()}).FormatMessage(true, msg))
	return err
}

// resolveValue maps a preset name to its value. Anything else is passed
// through untouched.
func resolveValue(arg string) string {
	if cfg != nil {
		if v, ok := cfg.Preset(arg); ok {
			return strconv.Itoa(v)
		}
	}
	return arg
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare kernel parameters with what new sockets inherit",
	Long: `Read the kernel parameters and open an unconnected loopback UDP socket per
address family to see which TTL and hop limit it inherits. No packets are
sent. Exits non-zero when the two disagree.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	w := newWriter()

	reading, err := accessor.Get(ctx)
	if err != nil {
		return reportError(w, err)
	}

	obs := sockopt.Observe(ctx)
	if obs.IPv4Err != nil {
		logger.Warnf("cannot observe IPv4 socket default: %s", obs.IPv4Err)
	}
	if obs.IPv6Err != nil {
		logger.Warnf("cannot observe IPv6 socket default: %s", obs.IPv6Err)
	}

	snapshot := &output.Snapshot{
		Backend:   backendName(),
		Reading:   reading,
		Observed:  &obs,
		Timestamp: time.Now(),
	}
	if err := w.Write(snapshot); err != nil {
		return err
	}

	if !snapshot.Consistent() {
		if jsonOutput {
			return errReported
		}
		return errors.New("socket defaults differ from kernel parameters")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a plugin backend on stdin/stdout",
	Long: `Serve plugin requests, one JSON object per line on stdin, answering one
JSON object per line on stdout:

  {"id": 1, "method": "get"}
  {"id": 1, "success": true, "result": {"ipv4": 64, "ipv6": 64}}

  {"id": 2, "method": "set", "params": {"ttl": 65}}
  {"id": 2, "success": true}

Lifecycle methods _main, _unload and _uninstall are accepted as well.
Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := plugin.New(accessor, logger)
	err := p.Serve(ctx, stdin, stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive panel to view and change the TTL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !output.IsTerminal(os.Stdin) || !output.IsTerminal(os.Stdout) {
			return errors.New("tui requires an interactive terminal")
		}
		return tui.Run(accessor)
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	PersistentPreRunE: loadSettingsQuiet,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "ttlctl %s\n", version)
		fmt.Fprintf(stdout, "  Commit:  %s\n", commit)
		fmt.Fprintf(stdout, "  Built:   %s\n", date)
		fmt.Fprintf(stdout, "  Config:  %s\n", config.GetConfigPath())
		fmt.Fprintf(stdout, "  Backend: %s\n", backendName())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the ttlctl configuration file.

Commands:
  ttlctl config --init     Create default config file
  ttlctl config --show     Show an example configuration
  ttlctl config --path     Show config file path`,
	PersistentPreRunE: loadSettingsQuiet,
	RunE:              runConfig,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List named TTL presets usable with set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := cfg.PresetNames()
		if len(names) == 0 {
			fmt.Fprintln(stdout, "No presets configured")
			return nil
		}
		for _, name := range names {
			v, _ := cfg.Preset(name)
			fmt.Fprintf(stdout, "%-12s %d\n", name, v)
		}
		return nil
	},
}

var (
	configInit bool
	configShow bool
	configPath bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show example configuration")
	configCmd.Flags().BoolVar(&configPath, "path", false, "Show config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configPath {
		fmt.Fprintln(stdout, config.GetConfigPath())
		return nil
	}

	if configInit {
		path := config.GetConfigPath()

		// Check if file already exists
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		if err := config.DefaultConfig().Save(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Fprintf(stdout, "Created config file: %s\n", path)
		return nil
	}

	if configShow {
		fmt.Fprintln(stdout, config.GenerateExample())
		return nil
	}

	// No flag specified, show help
	return cmd.Help()
}

// Execute runs the root command and flushes the logger.
func Execute() error {
	err := rootCmd.Execute()
	if closeLog != nil {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close log: %w", cerr)
		}
		closeLog = nil
	}
	return err
}

// SetVersion sets version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}
