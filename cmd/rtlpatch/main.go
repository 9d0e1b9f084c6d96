package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rtlpatch/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rtlpatch",
	Short: "Structural repair tool for malformed Verilog/SystemVerilog",
	Long:  `rtlpatch restores syntactic closure in generated or truncated RTL: terminated assigns, balanced case blocks, paired if/else branches, complete always headers, wrapped generate regions.`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
