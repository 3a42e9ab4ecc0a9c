package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"misterlister/internal/store"
	"misterlister/internal/table"
)

func newCopyCmd(a *app) *cobra.Command {
	var ranges []string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Print cells as tab-separated text for pasting",
		Long: `Print the selected cells of visible columns as tab-separated lines.

A range is "all", a row ("3"), a row span ("2-5") or a cell block
("2:1-5:3", row:column-row:column, 1-based). Repeat --range to copy several
blocks in order. Copying the whole table includes the header line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			t := o.Table()
			if len(ranges) == 0 {
				ranges = []string{"all"}
			}
			sel := make([]table.Range, 0, len(ranges))
			for _, s := range ranges {
				r, err := t.ParseRange(s)
				if err != nil {
					return err
				}
				sel = append(sel, r)
			}
			if text := t.CopySelection(sel...); text != "" {
				a.out.Print(text + "\n")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&ranges, "range", "r", nil, "Cells to copy (default: all)")
	return cmd
}

// formatFromPath picks an export format from a file extension.
func formatFromPath(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".json", ".tsv":
		return ext[1:]
	}
	return ""
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the visible columns as TSV, CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && out != "" {
				format = formatFromPath(out)
			}
			f, err := table.ParseFormat(format)
			if err != nil {
				return err
			}
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := o.Table().Export(&buf, f); err != nil {
				return err
			}
			if out == "" {
				a.out.Print(buf.String())
				return nil
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			detail := fmt.Sprintf("%d rows as %s to %s", o.Table().Len(), f, out)
			if _, err := a.st.Record(cmd.Context(), store.ActionExport, detail); err != nil {
				a.logger.Warn("failed to journal export", zap.Error(err))
			}
			a.out.Info("Exported %s", detail)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "tsv, csv or json (default: from --out extension, else tsv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of standard output")
	return cmd
}
