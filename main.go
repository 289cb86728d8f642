package main

import (
	"codeberg.org/smarttype/smarttype/pkg/config"
	"codeberg.org/smarttype/smarttype/pkg/correctionstore/sqlite"
	"codeberg.org/smarttype/smarttype/pkg/inputdev"
	"codeberg.org/smarttype/smarttype/pkg/oracle"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

var Version = "dev"

var (
	configPath string
	dbPath     string
	debug      bool
	statsLimit int
	statsSince time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "smarttype",
	Short: "System-wide autocorrect for Linux desktops",
	Long: `smarttype watches keyboard input from /dev/input and fixes common typos
as you type: when a word is finished it erases it with backspaces and
types the corrected word through a virtual keyboard.

Needs read access to /dev/input/event* and write access to /dev/uinput.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the autocorrect daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the input devices the daemon would listen to",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

var checkCmd = &cobra.Command{
	Use:   "check WORD...",
	Short: "Show what the daemon would do with each word",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show correction history",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var addCmd = &cobra.Command{
	Use:   "add TYPO CORRECTION",
	Short: "Add a custom typo to the config",
	Long: `Adds TYPO -> CORRECTION to custom_typos. A running daemon picks the
change up when the config file is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove TYPO",
	Short: "Remove a custom typo from the config",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default $XDG_CONFIG_HOME/smarttype/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	runCmd.Flags().StringVar(&dbPath, "db", "", "path to the correction history database (default $XDG_DATA_HOME/smarttype/corrections.db)")
	statsCmd.Flags().StringVar(&dbPath, "db", "", "path to the correction history database (default $XDG_DATA_HOME/smarttype/corrections.db)")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "number of typos to list, 0 for all")
	statsCmd.Flags().DurationVar(&statsSince, "since", 24*time.Hour, "also count corrections made within this window")

	rootCmd.AddCommand(runCmd, devicesCmd, checkCmd, statsCmd, addCmd, removeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func runDevices(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	devices, err := inputdev.NewRegistry(cfg.IgnoreDevices, log).Discover()
	if err != nil {
		return fmt.Errorf("discover devices: %w", err)
	}
	defer inputdev.CloseAll(devices)

	if len(devices) == 0 {
		return inputdev.ErrNoDevices
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\n", d.Path(), d.Name())
	}
	return w.Flush()
}

func runCheck(cmd *cobra.Command, words []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := newOracle(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, word := range words {
		if corrected, ok := table.Correct(word); ok {
			fmt.Fprintf(out, "%s -> %s\n", word, corrected)
		} else {
			fmt.Fprintf(out, "%s: no correction\n", word)
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsLimit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", statsLimit)
	}

	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := newOracle(cfg)
	if err != nil {
		return err
	}

	path, err := historyPath()
	if err != nil {
		return err
	}

	store, err := sqlite.NewCorrectionStore(path, log)
	if err != nil {
		return fmt.Errorf("open correction history: %w", err)
	}
	defer store.Close()

	total, err := store.TotalCorrections()
	if err != nil {
		return fmt.Errorf("count corrections: %w", err)
	}
	recent, err := store.CorrectionsSince(time.Now().Add(-statsSince))
	if err != nil {
		return fmt.Errorf("count recent corrections: %w", err)
	}
	top, err := store.TopTypos(statsLimit)
	if err != nil {
		return fmt.Errorf("list typos: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total corrections: %d\n", total)
	fmt.Fprintf(out, "corrections in the last %s: %d\n", statsSince, recent)
	fmt.Fprintf(out, "dictionary size: %d (%d custom)\n", table.Len(), len(cfg.CustomTypos))
	if len(top) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPO\tCORRECTION\tCOUNT")
	for _, t := range top {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.Typo, t.Correction, t.Count)
	}
	return w.Flush()
}

func runAdd(cmd *cobra.Command, args []string) error {
	typo := strings.ToLower(strings.TrimSpace(args[0]))
	correction := strings.TrimSpace(args[1])
	if typo == "" || correction == "" {
		return fmt.Errorf("%w: typo and correction must not be empty", config.ErrInvalid)
	}
	if oracle.InvisibleEdit(typo, correction) {
		return fmt.Errorf("%w: %q -> %q only adds symbols, which are never captured, so it would fire on correctly typed text", config.ErrInvalid, typo, correction)
	}

	err := editCustomTypos(func(custom map[string]string) error {
		custom[typo] = correction
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %s -> %s\n", typo, correction)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	typo := strings.ToLower(strings.TrimSpace(args[0]))

	err := editCustomTypos(func(custom map[string]string) error {
		if _, ok := custom[typo]; !ok {
			return fmt.Errorf("no custom typo %q", typo)
		}
		delete(custom, typo)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", typo)
	return nil
}

func editCustomTypos(edit func(custom map[string]string) error) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.CustomTypos == nil {
		cfg.CustomTypos = make(map[string]string)
	}

	if err := edit(cfg.CustomTypos); err != nil {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func historyPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	path, err := xdg.DataFile("smarttype/corrections.db")
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}
	return path, nil
}

// typos merges the configured typo files with the inline custom typos, which
// win on conflicts.
func typos(cfg *config.Config) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range cfg.TypoFiles {
		fromFile, err := oracle.ParseTyposFile(path)
		if err != nil {
			return nil, fmt.Errorf("load typo file %s: %w", path, err)
		}
		for typo, correction := range fromFile {
			merged[typo] = correction
		}
	}
	for typo, correction := range cfg.CustomTypos {
		merged[typo] = correction
	}
	return merged, nil
}

func newOracle(cfg *config.Config) (*oracle.Table, error) {
	custom, err := typos(cfg)
	if err != nil {
		return nil, err
	}
	return oracle.New(custom, cfg.MinWordLength), nil
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
