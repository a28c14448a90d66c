package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/crcsum/pkg/crcsum/checksum"
	"github.com/jamesainslie/crcsum/pkg/crcsum/engine"
	"github.com/jamesainslie/crcsum/pkg/crcsum/output"
	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// localWord is the positional keyword that selects local display paths.
const localWord = "local"

// mode is the operation selected on the command line.
type mode int

const (
	modeNone mode = iota
	modeFile
	modeDirectory
	modeRecursive
	modeCheck
)

func (m mode) String() string {
	switch m {
	case modeFile:
		return "file"
	case modeDirectory:
		return "directory"
	case modeRecursive:
		return "recursive"
	case modeCheck:
		return "check"
	default:
		return "none"
	}
}

// selectMode returns the single requested mode. --file and --check count
// as given even with an empty value.
func (a *app) selectMode(flags *pflag.FlagSet) (mode, error) {
	var selected []mode
	if flags.Changed("file") {
		selected = append(selected, modeFile)
	}
	if a.directory {
		selected = append(selected, modeDirectory)
	}
	if a.recursive {
		selected = append(selected, modeRecursive)
	}
	if flags.Changed("check") {
		selected = append(selected, modeCheck)
	}

	switch len(selected) {
	case 0:
		return modeNone, nil
	case 1:
		return selected[0], nil
	default:
		return modeNone, fmt.Errorf("%w: only one of --file, --directory, --recursive, --check may be given", errUsage)
	}
}

// dirArgs interprets the positional arguments of the directory modes:
// an optional "local" keyword followed by an optional directory.
func dirArgs(args []string) (local bool, dir string, err error) {
	if len(args) > 0 && args[0] == localWord {
		local = true
		args = args[1:]
	}
	switch len(args) {
	case 0:
		return local, ".", nil
	case 1:
		return local, args[0], nil
	default:
		return false, "", fmt.Errorf("%w: unexpected arguments: %s", errUsage, strings.Join(args[1:], " "))
	}
}

// run executes the selected mode.
func (a *app) run(cmd *cobra.Command, args []string) error {
	if a.showVersion {
		printVersionLine(cmd.OutOrStdout())
		return nil
	}

	m, err := a.selectMode(cmd.Flags())
	if err != nil {
		return err
	}
	if m == modeNone {
		if len(args) > 0 {
			return fmt.Errorf("%w: no mode given for arguments: %s", errUsage, strings.Join(args, " "))
		}
		return cmd.Help()
	}
	if (m == modeFile || m == modeCheck) && len(args) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %s", errUsage, strings.Join(args, " "))
	}

	alg, err := checksum.ParseAlgorithm(a.cfg.Algorithm)
	if err != nil {
		return err
	}

	local, dir, err := dirArgs(args)
	if err != nil {
		return err
	}
	display, err := types.ParseDisplayMode(a.cfg.Display)
	if err != nil {
		return err
	}
	if flagLocal, _ := cmd.Flags().GetBool("local"); local || flagLocal {
		display = types.Local
	}

	eng := engine.New(engine.Options{
		Workers:   a.cfg.Workers,
		Algorithm: alg,
		Display:   display,
		Exclude:   a.cfg.Exclude,
		BaseDir:   a.baseDir,
	}, output.New(cmd.OutOrStdout(), cmd.ErrOrStderr()))

	log := logger.With("run", a.runID, "mode", m)
	log.Debug("starting", "workers", eng.Workers(), "algorithm", alg, "display", display)

	ctx := cmd.Context()
	var summary types.Summary
	switch m {
	case modeFile:
		summary, err = eng.SingleFile(ctx, a.file)
	case modeDirectory:
		summary, err = eng.Directory(ctx, dir, types.Flat)
	case modeRecursive:
		summary, err = eng.Directory(ctx, dir, types.Recursive)
	case modeCheck:
		summary, err = eng.Verify(ctx, a.check)
	}

	log.Info("finished",
		"units", summary.Units,
		"ok", summary.OK,
		"failed", summary.Failed,
		"errors", summary.Errors,
		"unreadable", summary.Unreadable,
		"bytes", summary.HumanBytes(),
		"elapsed", summary.Elapsed,
		"throughput", summary.Throughput(),
	)

	return err
}
