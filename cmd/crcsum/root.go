package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jamesainslie/crcsum/pkg/crcsum/config"
	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = logging.Get("cli")

// errUsage is returned for invalid flag combinations.
var errUsage = errors.New("usage")

// app holds the state shared by the root command and its subcommands
// for one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	runID   string

	file        string
	check       string
	directory   bool
	recursive   bool
	showVersion bool
	baseDir     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "crcsum [flags] [local] [dir]",
		Short: "Compute and verify CRC32 checksums of files",
		Long: `Crcsum computes CRC32 checksums for a single file or for every regular
file in a directory, and verifies files against a previously written list.

Files are processed in parallel; each file produces exactly one line.
Results go to stdout as "<checksum> <path>", errors go to stderr.

Examples:
  crcsum -f ./example.txt           # Checksum one file
  crcsum -d                         # Files in the current directory
  crcsum -d local                   # Same, printing paths as found
  crcsum -r ~/photos > sums.txt     # Whole tree, absolute paths
  crcsum -c sums.txt                # Verify files listed in sums.txt
  crcsum config show                # Show configuration`,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.run,
	}

	// Mode flags
	cmd.Flags().StringVarP(&a.file, "file", "f", "", "calculate the checksum of a single file")
	cmd.Flags().BoolVarP(&a.directory, "directory", "d", false, "calculate checksums of files in a directory (default: current)")
	cmd.Flags().BoolVarP(&a.recursive, "recursive", "r", false, "calculate checksums of all files below a directory (default: current)")
	cmd.Flags().StringVarP(&a.check, "check", "c", "", "verify checksums listed in a file")
	cmd.Flags().BoolVarP(&a.showVersion, "version", "V", false, "print version and exit")
	cmd.Flags().Bool("local", false, "print paths as discovered instead of absolute paths")

	// Persistent flags (available to all commands)
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/crcsum/config.yaml)")
	pf.IntP("workers", "w", 0, "override worker count (0=auto)")
	pf.StringP("algorithm", "a", "", "checksum algorithm: crc32 or crc32c")
	pf.StringSliceP("exclude", "e", nil, "exclude patterns for directory scans (can be specified multiple times)")
	pf.StringVar(&a.baseDir, "base-dir", "", "directory that relative names in a checksum list are resolved against")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug output on stderr")
	pf.String("log-level", "", "file log level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		_ = logging.Close()
	}()
	return newRootCmd().ExecuteContext(ctx)
}

// setup loads configuration, binding command-line flags over file and
// environment values, and initializes logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()
	a.v = config.NewViper(a.cfgFile)

	bindings := []struct {
		key  string
		flag string
	}{
		{"workers", "workers"},
		{"algorithm", "algorithm"},
		{"exclude", "exclude"},
		{"logging.level", "log-level"},
	}
	for _, b := range bindings {
		if err := a.v.BindPFlag(b.key, root.PersistentFlags().Lookup(b.flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
		}
	}

	cfg, err := config.Read(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	consoleLevel := cfg.Logging.ConsoleLevel
	if a.verbose {
		consoleLevel = "debug"
	}
	if err := logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
		Console:      cmd.ErrOrStderr(),
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	a.runID = uuid.NewString()
	logger.Debug("configuration loaded", "run", a.runID, "config_file", a.v.ConfigFileUsed(),
		"workers", cfg.Workers, "algorithm", cfg.Algorithm, "display", cfg.Display)

	return nil
}
