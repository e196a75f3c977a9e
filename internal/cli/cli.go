package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitRejected = 2
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// CodeError carries a non-zero exit code out of a command.
type CodeError struct {
	Code int
	Err  error
}

func (e *CodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "community-site",
		Short: "Drive the community site pages headlessly",
		Long: `A CLI for the community site.
Renders pages through their controllers, submits page forms to the community
API, lists members and discussions, and serves the pages over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := outputFormat()
			return err
		},
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./community-site.json5 when present)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newRenderCmd(),
		newSubmitCmd(),
		newListCmd(),
		newServeCmd(),
	)
	return cmd
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exit *CodeError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exit.Err)
		}
		return exit.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
