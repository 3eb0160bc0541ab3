package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemascript"
	"github.com/tordrt/schemascript/internal/config"
)

var (
	errNoSource  = errors.New("one of --url or --snapshot must be specified (or source.url / source.snapshot in the config file)")
	errNoDialect = errors.New("a target dialect is required (--dialect or target.dialect in the config file)")
)

// settings is the config file with command line flags applied on top
type settings struct {
	cfg    *config.Config
	logger *logrus.Logger
	status *status
}

func (o *options) load(cmd *cobra.Command) (*settings, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Source.URL = o.url
		cfg.Source.Snapshot = ""
	}
	if flags.Changed("snapshot") {
		cfg.Source.Snapshot = o.snapshot
		cfg.Source.URL = ""
	}
	if flags.Changed("url") && flags.Changed("snapshot") {
		return nil, errors.New("only one of --url or --snapshot can be specified")
	}
	if flags.Changed("schema") {
		cfg.Source.Schema = o.schemaName
	}
	if flags.Changed("tables") {
		cfg.Source.Tables = parseTableList(o.tables)
	}
	if flags.Changed("exclude") {
		cfg.Source.Exclude = parseTableList(o.exclude)
	}
	if flags.Changed("dialect") {
		cfg.Target.Dialect = o.dialect
	}
	if flags.Changed("include-schema") {
		cfg.Target.IncludeSchema = o.includeSchema
	}
	if flags.Changed("raw-names") {
		escape := !o.rawNames
		cfg.Target.EscapeNames = &escape
	}
	if flags.Changed("batch-separator") {
		cfg.Target.BatchSeparator = o.batchSeparator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cmd, o.verbose)
	logger.WithField("config", o.configPath).Debug("configuration loaded")

	return &settings{
		cfg:    cfg,
		logger: logger,
		status: &status{out: cmd.ErrOrStderr(), quiet: o.quiet},
	}, nil
}

// parseTableList splits a comma-separated flag value, dropping blanks
func parseTableList(value string) []string {
	var list []string
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			list = append(list, name)
		}
	}
	return list
}

func (s *settings) dialect() (schemascript.Dialect, error) {
	if s.cfg.Target.Dialect == "" {
		return "", errNoDialect
	}
	return schemascript.ParseDialect(s.cfg.Target.Dialect)
}

func (s *settings) scriptOptions() schemascript.ScriptOptions {
	return schemascript.ScriptOptions{
		IncludeSchema:  s.cfg.Target.IncludeSchema,
		RawNames:       !*s.cfg.Target.EscapeNames,
		BatchSeparator: s.cfg.Target.BatchSeparator,
		Logger:         s.logger,
	}
}

func (s *settings) extractOptions() *schemascript.Options {
	return &schemascript.Options{
		Tables:        s.cfg.Source.Tables,
		ExcludeTables: s.cfg.Source.Exclude,
		SchemaName:    s.cfg.Source.Schema,
	}
}

// loadSchema reads the configured source
func (s *settings) loadSchema(ctx context.Context) (*schemascript.Schema, error) {
	switch {
	case s.cfg.Source.Snapshot != "":
		return s.loadFrom(ctx, s.cfg.Source.Snapshot)
	case s.cfg.Source.URL != "":
		return s.loadFrom(ctx, s.cfg.Source.URL)
	default:
		return nil, errNoSource
	}
}

// loadFrom reads a schema from a database URL or a snapshot path
func (s *settings) loadFrom(ctx context.Context, ref string) (*schemascript.Schema, error) {
	if strings.Contains(ref, "://") {
		s.status.info("Extracting schema from %s", redact(ref))
		sch, err := schemascript.ExtractSchema(ctx, ref, s.extractOptions())
		if err != nil {
			return nil, err
		}
		s.logger.WithField("tables", len(sch.Tables)).Debug("schema extracted")
		return sch, nil
	}

	sch, err := schemascript.LoadSchema(ref)
	if err != nil {
		return nil, err
	}
	selectTables(sch, s.cfg.Source.Tables, s.cfg.Source.Exclude)
	s.logger.WithFields(logrus.Fields{"snapshot": ref, "tables": len(sch.Tables)}).Debug("snapshot loaded")
	return sch, nil
}

// selectTables applies --tables and --exclude to a snapshot
func selectTables(sch *schemascript.Schema, include, exclude []string) {
	matches := func(list []string, name string) bool {
		for _, n := range list {
			if strings.EqualFold(n, name) {
				return true
			}
		}
		return false
	}

	kept := sch.Tables[:0]
	for _, t := range sch.Tables {
		if len(include) > 0 && !matches(include, t.Name) {
			continue
		}
		if matches(exclude, t.Name) {
			continue
		}
		kept = append(kept, t)
	}
	sch.Tables = kept
}

// redact hides the password of a database URL in status output
func redact(url string) string {
	scheme := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if scheme < 0 || at < scheme {
		return url
	}
	creds := url[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return url[:scheme+3] + creds[:i] + ":***" + url[at:]
	}
	return url
}

// openOutput returns the -o file, or the command's stdout
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// status prints colored progress lines to stderr
type status struct {
	out   io.Writer
	quiet bool
}

func (s *status) info(format string, args ...any) {
	s.print(color.FgBlue, format, args...)
}

func (s *status) done(format string, args ...any) {
	s.print(color.FgGreen, format, args...)
}

func (s *status) warn(format string, args ...any) {
	s.print(color.FgYellow, format, args...)
}

func (s *status) print(attr color.Attribute, format string, args ...any) {
	if s.quiet {
		return
	}
	_, _ = color.New(attr).Fprintf(s.out, format+"\n", args...)
}
