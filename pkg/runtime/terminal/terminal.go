package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/metric-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	pipeline *commands.Pipeline
	reporter *export.Reporter
	logger   zerolog.Logger
	logLevel string
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Decoders decoder.Registry
	Output   io.Writer
	// Logs defaults to stderr so they never mix with command output.
	Logs io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}

	cli := &CLI{
		pipeline: commands.NewPipeline(opts.Decoders),
		reporter: export.NewReporter(opts.Output),
		logger:   zerolog.New(zerolog.ConsoleWriter{Out: opts.Logs}).With().Timestamp().Logger(),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args[1:], mostly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "metric-atlas",
		Short:         "Analyze advertising performance spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := zerolog.ParseLevel(cli.logLevel)
			if err != nil {
				return err
			}
			logger := cli.logger.Level(level)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error, disabled)")
	cli.pipeline.BindFlags(cmd)

	cmd.AddCommand(commands.NewMetaCmd(cli.pipeline, cli.reporter))
	cmd.AddCommand(commands.NewSummarizeCmd(cli.pipeline, cli.reporter))
	cmd.AddCommand(commands.NewCompareCmd(cli.pipeline, cli.reporter))
	cmd.AddCommand(commands.NewTableCmd(cli.pipeline))
	cmd.AddCommand(commands.NewChartCmd(cli.pipeline))

	return cmd
}
