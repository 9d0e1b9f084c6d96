package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rtlpatch/internal/driver"
	"rtlpatch/internal/hints"
	"rtlpatch/internal/project"
	"rtlpatch/internal/report"
)

var patchCmd = &cobra.Command{
	Use:   "patch [flags] <file.v|directory|->",
	Short: "Repair malformed RTL in place",
	Long:  "Run the structural repair pipeline over a file, a directory tree, or stdin ('-'), rewriting repaired files and reporting what changed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatch,
}

func init() {
	patchCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
	patchCmd.Flags().String("output", "", "write repaired files into this directory instead of in place")
	patchCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	patchCmd.Flags().Int("jobs", 0, "max parallel files in directory mode (0 = all CPUs)")
	patchCmd.Flags().String("hints", "", "reference source file for clock inference")
	patchCmd.Flags().Bool("no-cache", false, "skip the hints disk cache")
	patchCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	patchCmd.Flags().Int("else-lookahead", 0, "else-matching window in lines (0 = default)")
}

func runPatch(cmd *cobra.Command, args []string) error {
	target := args[0]

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	hintsFlag, err := cmd.Flags().GetString("hints")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiFlag)
	if err != nil {
		return err
	}
	lookahead, err := cmd.Flags().GetInt("else-lookahead")
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	opts, err := resolveOptions(target, hintsFlag, lookahead, noCache, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts.Jobs = jobs
	opts.Timings = showTimings
	opts.DryRun = dryRun
	opts.OutputDir = outputDir

	prettyOpts := report.PrettyOpts{Color: useColor, Quiet: quiet, Timings: showTimings}

	if target == "-" {
		return patchStdin(cmd, opts, format, prettyOpts)
	}

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var results []driver.Result
	if info.IsDir() {
		results, err = patchDirectory(cmd.Context(), target, opts, mode, format)
		if err != nil {
			return err
		}
	} else {
		results = []driver.Result{driver.PatchFile(target, opts)}
	}

	switch format {
	case "json":
		if err := report.JSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	default:
		report.Pretty(cmd.OutOrStdout(), results, prettyOpts)
		if !quiet {
			report.Summary(cmd.OutOrStdout(), results, prettyOpts)
		}
	}

	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("%d of %d files failed", countFailed(results), len(results))
		}
	}
	return nil
}

// resolveOptions layers configuration: manifest values from rtlpatch.toml (if
// found walking up from the target), then CLI flag overrides, then the hints
// file. Hint loading failures degrade to no hints with a warning.
func resolveOptions(target, hintsFlag string, lookahead int, noCache bool, errOut io.Writer) (driver.Options, error) {
	startDir := target
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		startDir = "."
	}

	patchOpts, hintsPath, err := project.LoadOptions(startDir)
	if err != nil {
		return driver.Options{}, err
	}
	if lookahead > 0 {
		patchOpts.ElseLookahead = lookahead
	}
	if hintsFlag != "" {
		hintsPath = hintsFlag
	}

	if hintsPath != "" {
		var cache *hints.DiskCache
		if !noCache {
			// кэш опционален: без него просто перечитываем файл подсказок
			cache, _ = hints.OpenDiskCache("rtlpatch")
		}
		h, err := hints.LoadCached(hintsPath, cache)
		if err != nil {
			fmt.Fprintf(errOut, "warning: hints file unavailable, using static heuristics: %v\n", err)
		} else {
			patchOpts.Hints = h
		}
	}

	return driver.Options{Patch: patchOpts}, nil
}

func patchDirectory(ctx context.Context, dir string, opts driver.Options, mode uiMode, format string) ([]driver.Result, error) {
	if format == "pretty" && mode.enabled() {
		files, err := project.CollectFiles(dir)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, nil
		}
		return runPatchDirWithUI(ctx, "patching "+dir, dir, files, opts)
	}
	return driver.PatchDir(ctx, dir, opts)
}

func patchStdin(cmd *cobra.Command, opts driver.Options, format string, prettyOpts report.PrettyOpts) error {
	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}

	res := driver.PatchText("<stdin>", string(text), opts)

	// repaired text goes to stdout, the report to stderr
	fmt.Fprint(cmd.OutOrStdout(), res.Text)
	switch format {
	case "json":
		return report.JSON(cmd.ErrOrStderr(), []driver.Result{res})
	default:
		report.Pretty(cmd.ErrOrStderr(), []driver.Result{res}, prettyOpts)
	}
	return nil
}

func countFailed(results []driver.Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
