package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/timeline-engine/calendar"
	"github.com/warp/timeline-engine/factory"
	"github.com/warp/timeline-engine/recurrence"
)

func newExpandCmd() *cobra.Command {
	var (
		typ, pattern, weekday, from, to string
		interval, date, week, limit     int
		periods                         bool
	)
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the occurrences of a recurrence rule within a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := recurrence.Config{
				Type:               recurrence.Type(typ),
				Interval:           interval,
				MonthlyPattern:     recurrence.MonthlyPattern(pattern),
				MonthlyDate:        date,
				MonthlyWeekOfMonth: week,
			}
			if weekday != "" {
				wd, err := factory.ParseWeekday(weekday)
				if err != nil {
					return err
				}
				if cfg.Type == recurrence.Weekly {
					cfg.WeeklyDayOfWeek = &wd
				} else {
					cfg.MonthlyDayOfWeek = &wd
				}
			}

			start, err := calendar.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := calendar.ParseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			occurrences, err := recurrence.Expand(cfg, calendar.DateRange{Start: start, End: end}, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if periods {
				for _, r := range recurrence.OccurrenceRanges(occurrences, start) {
					fmt.Fprintln(out, r)
				}
				return nil
			}
			for _, occ := range occurrences {
				fmt.Fprintln(out, occ)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&typ, "type", "weekly", "daily, weekly or monthly")
	f.IntVar(&interval, "interval", 1, "repeat every N units")
	f.StringVar(&weekday, "weekday", "", "weekday for weekly or monthly dayOfWeek rules")
	f.StringVar(&pattern, "pattern", "", "monthly pattern: date or dayOfWeek")
	f.IntVar(&date, "date", 0, "day of month for monthly date rules")
	f.IntVar(&week, "week", 0, "week of month (1-4, 5 = last) for monthly dayOfWeek rules")
	f.StringVar(&from, "from", "", "first date of the range")
	f.StringVar(&to, "to", "", "last date of the range")
	f.IntVar(&limit, "limit", recurrence.DefaultCap, "maximum occurrences")
	f.BoolVar(&periods, "periods", false, "print the work period leading up to each occurrence")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
