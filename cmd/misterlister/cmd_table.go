package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"misterlister/internal/classifier"
	"misterlister/internal/config"
	"misterlister/internal/matcher"
	"misterlister/internal/orchestrator"
	"misterlister/internal/output"
	"misterlister/internal/store"
	"misterlister/internal/table"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		dryRun    bool
		backupDir string
	)
	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Add files to the table, one row per filename",
		Long: `Add files to the table. Directories are scanned using the files section of
the configuration. With no paths, files.default_dir is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				if a.cfg.Files.DefaultDir == "" {
					return fmt.Errorf("no paths given and files.default_dir is not set")
				}
				paths = []string{a.cfg.Files.DefaultDir}
			}

			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			opts := a.ingestOptions()
			if cmd.Flags().Changed("backup-dir") {
				opts.BackupDir = backupDir
			}
			opts.Progress = func(done, total int) {
				if done == 1 {
					a.out.StartProgress(total)
				}
				a.out.UpdateProgress(done, "")
			}

			var summary *orchestrator.Summary
			if dryRun {
				summary, err = o.DryRun(cmd.Context(), paths, opts)
			} else {
				summary, err = o.Ingest(cmd.Context(), paths, opts)
			}
			a.out.EndProgress()
			if err != nil {
				return err
			}

			reportSummary(a, summary, dryRun)
			if !dryRun {
				a.rememberDirectory(paths[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the rows that would be added without changing anything")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Copy each added file here (overrides files.backup_dir)")
	return cmd
}

func reportSummary(a *app, s *orchestrator.Summary, dryRun bool) {
	for _, r := range s.Results {
		switch {
		case r.Err != nil:
			a.out.Error("%s: %v", r.Entry.FullPath, r.Err)
		case dryRun:
			a.out.Info("%s\t%s", strings.Join(r.Record.Cells, "\t"), r.Record.Status)
		case r.Record.NeedsReview():
			a.out.Verbose("review %s: %s (%d of %d dates)", r.Entry.Name, r.Record.Reason, r.Record.ResolvedDates(), len(r.Record.Dates))
		default:
			a.out.Verbose("added %s (%d of %d dates)", r.Entry.Name, r.Record.ResolvedDates(), len(r.Record.Dates))
		}
	}
	if s.ScanErr != nil {
		a.out.Error("%v", s.ScanErr)
	}
	if dryRun {
		a.out.Info("Dry run: %d files, %d complete, %d for review", s.Total, s.Complete, s.Review)
		return
	}
	a.out.Info("%s", s.String())
	if a.out.IsVerbose() && len(s.ByReason) > 0 {
		reasons := make([]classifier.ReviewReason, 0, len(s.ByReason))
		for r := range s.ByReason {
			reasons = append(reasons, r)
		}
		slices.Sort(reasons)
		for _, r := range reasons {
			a.out.Verbose("  %s: %d", r, s.ByReason[r])
		}
	}
}

// rememberDirectory stores the directory of path as files.default_dir when
// files.remember_dir is on.
func (a *app) rememberDirectory(path string) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if !a.cfg.RememberDirectory(dir) {
		return
	}
	if err := config.Save(a.cfg, a.configPath); err != nil {
		a.logger.Warn("failed to remember directory", zap.String("dir", dir), zap.Error(err))
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		numbers bool
		source  bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the table",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Print(output.RenderTable(o.Table(), output.RenderOptions{
				RowNumbers: numbers,
				Source:     source,
				Layout:     a.cfg.TableLayout(),
			}))
			a.out.Print("\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&numbers, "numbers", true, "Show row numbers; rows needing review are marked "+output.ReviewMarker)
	cmd.Flags().BoolVar(&source, "source", false, "Show the path each row came from")
	return cmd
}

// columnArg resolves a column number, header or header prefix.
func columnArg(t *table.Table, ref string) (int, error) {
	m := matcher.Match(ref, t.Headers)
	if m.Matched {
		return m.Column, nil
	}
	if len(m.Ambiguous) > 0 {
		return 0, fmt.Errorf("column %q is ambiguous: %s", ref, strings.Join(m.Ambiguous, ", "))
	}
	return 0, fmt.Errorf("no column %q (columns: %s)", ref, strings.Join(t.Headers, ", "))
}

func newSortCmd(a *app) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "sort <column>",
		Short: "Sort rows by a column",
		Long: `Sort rows by a column given as a number, a header or a header prefix.
Dates sort chronologically and whole numbers numerically. Empty cells come first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			col, err := columnArg(o.Table(), args[0])
			if err != nil {
				return err
			}
			order := "ascending"
			if desc {
				order = "descending"
			}
			detail := fmt.Sprintf("%s %s", o.Table().Headers[col], order)
			if err := o.Apply(cmd.Context(), store.ActionSort, detail, func(t *table.Table) error {
				return t.SortBy(col, desc)
			}); err != nil {
				return err
			}
			a.out.Info("Sorted by %s", detail)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&desc, "desc", "d", false, "Sort in descending order")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <row> <column> <value>",
		Short: "Replace the text of one cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			row, err := rowArg(o.Table(), args[0])
			if err != nil {
				return err
			}
			col, err := columnArg(o.Table(), args[1])
			if err != nil {
				return err
			}
			old := o.Table().Rows[row].Cells[col]
			detail := fmt.Sprintf("row %d %s: %q -> %q", row+1, o.Table().Headers[col], old, args[2])
			if err := o.Apply(cmd.Context(), store.ActionEdit, detail, func(t *table.Table) error {
				return t.Edit(row, col, args[2])
			}); err != nil {
				return err
			}
			a.out.Verbose("%s", detail)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <rows...>",
		Aliases: []string{"rm"},
		Short:   "Delete rows by number",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]int, 0, len(args))
			for _, arg := range args {
				r, err := rowArg(o.Table(), arg)
				if err != nil {
					return err
				}
				rows = append(rows, r)
			}
			var n int
			detail := "rows " + strings.Join(args, ",")
			if err := o.Apply(cmd.Context(), store.ActionDelete, detail, func(t *table.Table) error {
				n = t.Delete(rows...)
				return nil
			}); err != nil {
				return err
			}
			a.out.Info("Deleted %d rows", n)
			return nil
		},
	}
}

func newHideCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <column>",
		Short: "Hide a column from list, copy and export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			col, err := columnArg(o.Table(), args[0])
			if err != nil {
				return err
			}
			return o.Apply(cmd.Context(), store.ActionHide, o.Table().Headers[col], func(t *table.Table) error {
				return t.Hide(col)
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [column]",
		Short: "Show a hidden column, or all columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return o.Apply(cmd.Context(), store.ActionShow, "all", func(t *table.Table) error {
					t.ShowAll()
					return nil
				})
			}
			col, err := columnArg(o.Table(), args[0])
			if err != nil {
				return err
			}
			return o.Apply(cmd.Context(), store.ActionShow, o.Table().Headers[col], func(t *table.Table) error {
				t.Show(col)
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			n := o.Table().Len()
			if n == 0 {
				a.out.Info("Table is already empty")
				return nil
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Clear %d rows? [y/N] ", n)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					a.out.Info("Cancelled")
					return nil
				}
			}
			if err := o.Apply(cmd.Context(), store.ActionClear, fmt.Sprintf("%d rows", n), func(t *table.Table) error {
				t.Clear()
				return nil
			}); err != nil {
				return err
			}
			a.out.Info("Cleared %d rows", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
