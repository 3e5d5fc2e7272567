package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ukydev/motorcheck/internal/maintenance"
	"github.com/ukydev/motorcheck/internal/models"
)

func evaluate(opts *options) (maintenance.Report, models.Snapshot, error) {
	snap, err := opts.load()
	if err != nil {
		return maintenance.Report{}, snap, err
	}
	now, err := opts.now()
	if err != nil {
		return maintenance.Report{}, snap, err
	}
	report := maintenance.Calculate(maintenance.Input{
		CurrentOdometer: snap.Vehicle.CurrentOdometer,
		Definitions:     snap.ServiceDefinitions,
		Logs:            snap.ServiceLogs,
	}, now)
	return report, snap, nil
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every service ordered by urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, snap, err := evaluate(opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Odometer: %d km  urgent: %d  upcoming: %d\n\n",
				snap.Vehicle.CurrentOdometer, report.UrgentCount, report.UpcomingCount)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tSERVICE\tKM LEFT\tDAYS LEFT\tNEXT DUE")
			for _, s := range report.Statuses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Status, s.Name, s.KmLeft, s.DaysLeft, nextDue(s))
			}
			return tw.Flush()
		},
	}
}

func nextDue(s models.ServiceStatus) string {
	switch {
	case s.NextDueOdometer != nil && s.NextDueDate != nil:
		return fmt.Sprintf("%d km / %s", *s.NextDueOdometer, s.NextDueDate.Format(models.DateLayout))
	case s.NextDueOdometer != nil:
		return fmt.Sprintf("%d km", *s.NextDueOdometer)
	case s.NextDueDate != nil:
		return s.NextDueDate.Format(models.DateLayout)
	default:
		return "-"
	}
}

func newRemindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Print the reminder a notification would carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, _, err := evaluate(opts)
			if err != nil {
				return err
			}
			reminder, ok := maintenance.BuildReminder(report)
			if opts.asJSON {
				if !ok {
					return printJSON(cmd, nil)
				}
				return printJSON(cmd, reminder)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "All services are up to date.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", reminder.Title, reminder.Body)
			return nil
		},
	}
}
