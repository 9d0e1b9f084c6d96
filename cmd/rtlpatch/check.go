package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rtlpatch/internal/driver"
	"rtlpatch/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.v|directory>",
	Short: "Report needed repairs without writing anything",
	Long:  "Run the repair pipeline in dry-run mode and exit non-zero when any file would be changed. Useful as a CI gate for generated RTL.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel files in directory mode (0 = all CPUs)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

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
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	opts, err := resolveOptions(target, "", 0, true, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts.Jobs = jobs
	opts.DryRun = true

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var results []driver.Result
	if info.IsDir() {
		results, err = driver.PatchDir(cmd.Context(), target, opts)
		if err != nil {
			return err
		}
	} else {
		results = []driver.Result{driver.PatchFile(target, opts)}
	}

	prettyOpts := report.PrettyOpts{Color: useColor, Quiet: quiet}
	switch format {
	case "json":
		if err := report.JSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	default:
		report.Pretty(cmd.OutOrStdout(), results, prettyOpts)
	}

	dirty := 0
	for _, res := range results {
		if res.Err != nil || res.Changed {
			dirty++
		}
	}
	if dirty > 0 {
		return fmt.Errorf("%d of %d files need repair", dirty, len(results))
	}
	return nil
}
