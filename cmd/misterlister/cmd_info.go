package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"misterlister/internal/classifier"
	"misterlister/internal/dateparser"
	"misterlister/internal/orchestrator"
	"misterlister/internal/segmenter"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the table: rows, review flags and date columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			s := orchestrator.Status(o.Table(), a.cfg.TableLayout())

			a.out.Info("Store:   %s", a.resolvedStorePath())
			a.out.Info("Rows:    %d (%d for review)", s.Rows, s.Review)
			if len(s.Hidden) > 0 {
				a.out.Info("Hidden:  %s", strings.Join(s.Hidden, ", "))
			}
			for _, c := range s.Columns {
				line := fmt.Sprintf("%s: %d dates, %d unresolved, %d empty", c.Header, c.Resolved, c.Unresolved, c.Empty)
				if c.Earliest != "" {
					line += fmt.Sprintf(" (%s to %s)", c.Earliest, c.Latest)
				}
				a.out.Info("%s", line)
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent changes to the table, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd.Context()); err != nil {
				return err
			}
			events, err := a.st.Events(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				a.out.Info("No changes recorded")
				return nil
			}
			for _, e := range events {
				a.out.Info("%s  %-6s  %s", e.At.Local().Format(time.DateTime), e.Action, e.Detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of entries to show (0 for all)")
	return cmd
}

func newSegmentCmd(a *app) *cobra.Command {
	var (
		split       string
		classCodes  []string
		showClasses bool
		cells       bool
	)
	cmd := &cobra.Command{
		Use:   "segment <text>",
		Short: "Show how a filename is split into segments",
		Long: `Show how a filename is split into segments.

Split classes come from sample characters (--split "A1") or from Unicode
general category codes (--class Lu,Nd). --classes prints the class set in
use and the class of the first character of every segment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.classifyOptions()
			if cmd.Flags().Changed("split") {
				opts.SplitChars = segmenter.ParseSplitChars(split)
			}
			set := segmenter.DefaultClassSet()
			if len(opts.SplitChars) > 0 {
				set = segmenter.NewClassSet(opts.SplitChars...)
			}
			if cmd.Flags().Changed("class") {
				var err error
				if set, err = parseClassSet(classCodes); err != nil {
					return err
				}
			}

			if showClasses {
				a.out.Info("split classes: %s", joinClasses(set.Classes()))
			}
			for i, seg := range segmenter.SegmentBy(args[0], set) {
				if showClasses {
					r, _ := utf8.DecodeRuneInString(seg)
					a.out.Info("%d\t%s\t%s", i+1, strconv.Quote(seg), segmenter.Classify(r))
				} else {
					a.out.Info("%d\t%s", i+1, strconv.Quote(seg))
				}
			}
			if !cells {
				return nil
			}

			rec := classifier.Classify(args[0], opts)
			a.out.Info("%s", strings.Join(rec.Cells, "\t"))
			if rec.NeedsReview() {
				a.out.Info("%s: %s", rec.Status, rec.Reason)
			} else {
				a.out.Info("%s", rec.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&split, "split", "s", "", "Sample split characters (default: segmentation.split_chars)")
	cmd.Flags().StringSliceVar(&classCodes, "class", nil, "Split on these general categories instead, e.g. Lu,Nd")
	cmd.Flags().BoolVar(&showClasses, "classes", false, "Show the split classes and each segment's leading class")
	cmd.Flags().BoolVar(&cells, "cells", false, "Also show the row the text would become")
	return cmd
}

// parseClassSet builds a class set from category codes such as "Lu".
func parseClassSet(codes []string) (segmenter.ClassSet, error) {
	var set segmenter.ClassSet
	for _, code := range codes {
		c, ok := segmenter.ParseClass(strings.TrimSpace(code))
		if !ok {
			return 0, fmt.Errorf("unknown character class %q (want a code such as Lu, Ll or Nd)", code)
		}
		set = set.With(c)
	}
	return set, nil
}

func joinClasses(classes []segmenter.Class) string {
	if len(classes) == 0 {
		return "(none)"
	}
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func newDateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "date <token>",
		Short: "Rewrite an MMDDYY token as MM-DD-YYYY",
		Long: `Rewrite an MMDDYY token as MM-DD-YYYY. Two-digit years above the last two
digits of the reference year are 19xx, the rest 20xx. Tokens that are not
valid dates are printed unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := a.cfg.ReferenceYear(a.now())
			a.out.Info("%s", dateparser.NormalizeShortDate(args[0], ref))

			if _, err := dateparser.ParseShortDate(args[0], ref); err != nil {
				a.out.Verbose("unchanged: %v", err)
			} else {
				a.out.Verbose("reference year %d, pivot %02d", ref, dateparser.Pivot(ref))
			}
			return nil
		},
	}
}
