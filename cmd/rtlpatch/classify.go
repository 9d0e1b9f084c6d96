package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] <file.v>",
	Short: "Dump per-line token classification",
	Long:  "Show how the repair heuristics classify each line of a file. Debug aid for understanding why a pass did or did not fire.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type classifiedLine struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Indent  int    `json:"indent"`
	Content string `json:"content"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	f, err := source.Load(args[0])
	if err != nil {
		return err
	}

	classified := make([]classifiedLine, len(f.Lines))
	for i, line := range f.Lines {
		classified[i] = classifiedLine{
			Line:    i + 1,
			Kind:    token.Classify(line.Trimmed).String(),
			Indent:  line.IndentWidth(),
			Content: line.Trimmed,
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(classified)
	case "pretty":
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

		kindStyle := color.New(color.FgCyan)
		if !useColor {
			kindStyle.DisableColor()
		}
		for _, cl := range classified {
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-14s %s\n",
				cl.Line, kindStyle.Sprint(cl.Kind), cl.Content)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
