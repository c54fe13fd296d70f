package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tacogips/ionstart/internal/app"
	"github.com/tacogips/ionstart/internal/config"
	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/shell"
	"github.com/tacogips/ionstart/internal/tasks"
)

// Global flags
var (
	globalNoColor       bool
	globalQuiet         bool
	globalDebug         bool
	globalNoInteractive bool
	globalConfigDir     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ionstart",
	Short: "Create and serve Ionic apps",
	Long: `ionstart creates new apps from Ionic starter templates or git repositories
and runs their development servers.

Use "ionstart start [name] [template]" to:
  1. Pick a framework and a starter template
  2. Download the starter (or clone a repository)
  3. Personalize the app, install dependencies and create the first commit`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetDebug(globalDebug)
		debug.SetNoColor(globalNoColor)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)
	rootCmd.PersistentFlags().BoolVar(&globalNoInteractive, FlagNoInteractive, false, DescNoInteractive)
	rootCmd.PersistentFlags().StringVar(&globalConfigDir, FlagConfig, "", DescConfig)

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(labCmd)
	rootCmd.AddCommand(versionCmd)
}

// printError prints an error message to stderr. A declined confirmation has
// already explained itself.
func printError(err error) {
	if app.IsType(err, app.UserDeclined) {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// interactive reports whether questions can be asked on this terminal.
func interactive(cfg *config.Config) bool {
	if globalNoInteractive || cfg.CI {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newEnv builds the execution environment from the global flags.
func newEnv() (*app.Env, error) {
	cfg, err := config.NewLoader(globalConfigDir).Load()
	if err != nil {
		return nil, err
	}

	printer := output.NewStdPrinter()
	if globalNoColor {
		printer.SetNoColor(true)
	}
	printer.SetQuiet(globalQuiet)

	var prompter prompt.Prompter = prompt.NonInteractive{}
	if interactive(cfg) {
		prompter = NewSurveyPrompter()
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	var chain tasks.Sink = tasks.NewStdChain()
	var echo io.Writer = printer.Writer()
	if globalQuiet {
		chain = tasks.NewChain(io.Discard, false)
		echo = nil
	}

	return app.NewEnv(app.EnvOptions{
		Config:  cfg,
		Log:     printer,
		Colors:  printer.Colors(),
		Prompt:  prompter,
		Shell:   shell.New(echo),
		Tasks:   chain,
		WorkDir: wd,
	}), nil
}
