package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemascript/internal/config"
)

// options holds the flags shared by every subcommand
type options struct {
	configPath     string
	url            string
	snapshot       string
	schemaName     string
	tables         string
	exclude        string
	dialect        string
	output         string
	includeSchema  bool
	rawNames       bool
	batchSeparator string
	verbose        bool
	quiet          bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "schemascript",
		Short: "Generate SQL scripts from database schemas",
		Long: `SchemaScript reads a schema from PostgreSQL, MySQL or SQLite, or from a YAML snapshot,
and writes CREATE, DROP, migration and data scripts for SqlServer, Oracle, MySQL,
SQLite, Firebird or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "Config file")
	flags.StringVar(&opts.url, "url", "", "Source database URL (postgres://, mysql:// or sqlite://)")
	flags.StringVar(&opts.snapshot, "snapshot", "", "Source YAML schema snapshot")
	flags.StringVarP(&opts.schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, the DSN database for MySQL)")
	flags.StringVarP(&opts.tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	flags.StringVarP(&opts.exclude, "exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	flags.StringVarP(&opts.dialect, "dialect", "D", "", "Target dialect: sqlserver, oracle, mysql, sqlite, firebird or postgres")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	flags.BoolVar(&opts.includeSchema, "include-schema", false, "Qualify table names with their schema")
	flags.BoolVar(&opts.rawNames, "raw-names", false, "Write identifiers without quoting")
	flags.StringVar(&opts.batchSeparator, "batch-separator", "", "Batch separator line (default: GO for sqlserver)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress status lines")

	rootCmd.AddCommand(
		newCreateCmd(opts),
		newDropCmd(opts),
		newMigrateCmd(opts),
		newDataCmd(opts),
		newSnapshotCmd(opts),
		newSplitCmd(opts),
	)
	return rootCmd
}

// newLogger writes text logs to stderr; warnings only unless verbose
func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
