package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/warp/timeline-engine/api"
	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/planning"
)

func newPlanCmd() *cobra.Command {
	var (
		file    string
		asOf    string
		asJSON  bool
		exclude string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Allocate a project snapshot file and print segments and budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			snap, err := parseSnapshotFile(file, data)
			if err != nil {
				return err
			}

			day := calendar.DateOf(time.Now())
			if asOf != "" {
				if day, err = calendar.ParseDate(asOf); err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
			}

			in := snap.AllocationInput(day)
			segments, err := planning.Allocate(in)
			if err != nil {
				return err
			}
			report := snap.Budget(planning.PhaseID(exclude))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(planOutput{
					Allocation: api.NewSegmentsResponse(snap.Project.ID, in.Window, segments),
					Budget:     api.NewBudgetDTO(report),
				})
			}
			return printPlan(cmd.OutOrStdout(), in.Window, segments, report)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project snapshot (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "date continuous windows are measured from (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&exclude, "exclude", "", "phase id to leave out of budget validation")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type planOutput struct {
	Allocation api.SegmentsResponse `json:"allocation"`
	Budget     api.BudgetDTO        `json:"budget"`
}

func parseSnapshotFile(path string, data []byte) (planning.Snapshot, error) {
	f := factory.New()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return f.ParseSnapshot(data)
	}
	return f.ParseSnapshotYAML(data)
}

func printPlan(out io.Writer, window calendar.DateRange, segments []planning.Segment, report planning.BudgetReport) error {
	fmt.Fprintf(out, "Window %s\n\n", window)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tSTART\tEND\tDAYS\tALLOCATED\tPLANNED\tH/DAY")
	for _, s := range segments {
		name := "(unallocated)"
		if s.Phase != nil {
			name = s.Phase.Name
			if name == "" {
				name = string(s.Phase.ID)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
			name, s.Start, s.End, len(s.WorkingDays), s.AllocatedHours, s.PlannedHours, s.HoursPerDay)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nBudget %.2fh, allocated %.2fh (%.1f%%)", report.Budget, report.TotalAllocated, report.Utilization)
	switch {
	case report.HasTemplate:
		fmt.Fprintln(out, ", recurring template")
	case report.IsValid:
		fmt.Fprintf(out, ", %.2fh remaining\n", report.Remaining)
	default:
		fmt.Fprintf(out, ", OVER by %.2fh\n", report.Overage)
	}
	for _, r := range report.Recommendations {
		fmt.Fprintf(out, "  - %s\n", r)
	}
	return nil
}
