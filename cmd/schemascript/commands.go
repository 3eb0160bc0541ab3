package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemascript"
	"github.com/tordrt/schemascript/internal/db"
	"github.com/tordrt/schemascript/internal/order"
)

// writeScript writes text to -o or stdout
func writeScript(cmd *cobra.Command, path, text string) error {
	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		_ = closeFn()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return closeFn()
}

func newCreateCmd(opts *options) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a CREATE script for the source schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" && opts.output != "" {
				return fmt.Errorf("cannot use both --output-dir and --output flags")
			}

			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.dialect()
			if err != nil {
				return err
			}
			sch, err := s.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			scriptOpts := s.scriptOptions()

			// Multi-file output
			if outputDir != "" {
				files, err := schemascript.WriteCreateFiles(cmd.Context(), outputDir, sch, d, &scriptOpts)
				if err != nil {
					return err
				}
				s.status.done("Wrote %d files to %s", len(files), outputDir)
				return nil
			}

			text, err := schemascript.GenerateCreateScript(cmd.Context(), sch, d, &scriptOpts)
			if err != nil {
				return err
			}
			if err := writeScript(cmd, opts.output, text); err != nil {
				return err
			}
			s.status.done("Create script for %d tables (%s)", len(sch.Tables), d)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one file per table")
	return cmd
}

func newDropCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Write a DROP script for the source schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.dialect()
			if err != nil {
				return err
			}
			sch, err := s.loadSchema(cmd.Context())
			if err != nil {
				return err
			}

			scriptOpts := s.scriptOptions()
			text, err := schemascript.GenerateDropScript(cmd.Context(), sch, d, &scriptOpts)
			if err != nil {
				return err
			}
			if err := writeScript(cmd, opts.output, text); err != nil {
				return err
			}
			s.status.done("Drop script for %d tables (%s)", len(sch.Tables), d)
			return nil
		},
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	var detectRenames bool

	cmd := &cobra.Command{
		Use:   "migrate <before> <after>",
		Short: "Write the script that turns one schema into another",
		Long: `Compares two schemas and writes the statements that turn <before> into <after>.
Each argument is either a database URL or a YAML snapshot path.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.dialect()
			if err != nil {
				return err
			}

			before, err := s.loadFrom(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			after, err := s.loadFrom(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[1], err)
			}

			text, err := schemascript.GenerateMigrationScript(cmd.Context(), before, after, d, &schemascript.MigrationOptions{
				ScriptOptions: s.scriptOptions(),
				DetectRenames: detectRenames,
			})
			if err != nil {
				return err
			}
			if err := writeScript(cmd, opts.output, text); err != nil {
				return err
			}
			s.status.done("Migration script written (%s)", d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&detectRenames, "detect-renames", false, "Turn matching drop/add pairs into renames")
	return cmd
}

func newDataCmd(opts *options) *cobra.Command {
	var (
		maxRows         int
		includeIdentity bool
		includeBlobs    bool
	)

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Write INSERT scripts for table rows",
		Long: `Reads rows from the source database and writes one INSERT per row, table by table
in foreign key dependency order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.dialect()
			if err != nil {
				return err
			}
			if s.cfg.Source.URL == "" {
				return fmt.Errorf("data scripts need a source database: %w", errNoSource)
			}

			flags := cmd.Flags()
			if flags.Changed("max-rows") {
				s.cfg.Data.MaxRows = maxRows
			}
			if flags.Changed("include-identity") {
				s.cfg.Data.IncludeIdentity = &includeIdentity
			}
			if flags.Changed("include-blobs") {
				s.cfg.Data.IncludeBlobs = includeBlobs
			}
			if err := s.cfg.Validate(); err != nil {
				return err
			}

			reader, err := db.Open(ctx, s.cfg.Source.URL, s.cfg.Source.Schema)
			if err != nil {
				return err
			}
			defer func() {
				if err := reader.Close(); err != nil {
					s.logger.WithError(err).Warn("failed to close database connection")
				}
			}()

			sch, err := reader.ReadSchema(ctx, s.cfg.Source.Tables)
			if err != nil {
				return fmt.Errorf("failed to extract schema: %w", err)
			}
			selectTables(sch, nil, s.cfg.Source.Exclude)

			res, err := order.Sort(ctx, sch.Tables)
			if err != nil {
				return err
			}
			if res.Fallback {
				s.status.warn("Foreign keys form a cycle; inserts may need constraints disabled")
			}

			dataOpts := &schemascript.DataOptions{
				ScriptOptions:   s.scriptOptions(),
				IncludeIdentity: *s.cfg.Data.IncludeIdentity,
				IncludeBlobs:    s.cfg.Data.IncludeBlobs,
				MaxRows:         s.cfg.Data.MaxRows,
				Schema:          sch,
			}

			var sb strings.Builder
			total := 0
			for _, t := range res.Tables {
				// DataScript applies MaxRows and reports the full row count
				rows, err := reader.ReadRows(ctx, t, 0)
				if err != nil {
					return fmt.Errorf("failed to read rows of %s: %w", t.Name, err)
				}
				text, err := schemascript.GenerateDataScript(ctx, t, rows, d, dataOpts)
				if err != nil {
					return err
				}
				sb.WriteString(text)
				total += len(rows)
				s.status.info("%s: %d rows", t.Name, len(rows))
			}

			if err := writeScript(cmd, opts.output, sb.String()); err != nil {
				return err
			}
			s.status.done("Data script for %d tables, %d rows read (%s)", len(res.Tables), total, d)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Stop after this many rows per table (0: all)")
	cmd.Flags().BoolVar(&includeIdentity, "include-identity", true, "Insert identity values and reset the generator")
	cmd.Flags().BoolVar(&includeBlobs, "include-blobs", false, "Include binary columns")
	return cmd
}

func newSnapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Save the source schema as a YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			sch, err := s.loadSchema(cmd.Context())
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, opts.output)
			if err != nil {
				return err
			}
			if err := schemascript.SaveSchema(w, sch); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			s.status.done("Snapshot of %d tables", len(sch.Tables))
			return nil
		},
	}
}

func newSplitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "split [file]",
		Short: "Split a SQL script into statements",
		Long: `Reads a script from the file or stdin and writes each statement on its own,
followed by a blank line. Batch separators and SET TERM lines are removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			d, err := s.dialect()
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}

			statements := schemascript.SplitScript(string(data), d)
			var sb strings.Builder
			for _, stmt := range statements {
				sb.WriteString(stmt)
				sb.WriteString("\n\n")
			}
			if err := writeScript(cmd, opts.output, sb.String()); err != nil {
				return err
			}
			s.status.done("%d statements", len(statements))
			return nil
		},
	}
}
