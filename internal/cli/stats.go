package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ukydev/motorcheck/internal/models"
	"github.com/ukydev/motorcheck/internal/stats"
)

func newStatsCmd(opts *options) *cobra.Command {
	var rangeName, from, to string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize fuel and service spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := opts.load()
			if err != nil {
				return err
			}
			now, err := opts.now()
			if err != nil {
				return err
			}

			var rng stats.Range
			if from != "" || to != "" {
				if from == "" || to == "" {
					return fmt.Errorf("--from and --to must be used together")
				}
				f, err := models.ParseDate(from)
				if err != nil {
					return err
				}
				t, err := models.ParseDate(to)
				if err != nil {
					return err
				}
				rng = stats.CustomRange(f, t)
			} else if rng, err = stats.RangeFor(rangeName, now); err != nil {
				return fmt.Errorf("%w %q", err, rangeName)
			}

			m := stats.Compute(snap, rng)
			if opts.asJSON {
				return printJSON(cmd, m)
			}

			volUnit := "L"
			if snap.Vehicle.UnitSystem == models.UnitKmPerGallon || snap.Vehicle.UnitSystem == "" {
				volUnit = "gal"
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Refuels\t%d\n", m.FuelVisits)
			fmt.Fprintf(tw, "Services\t%d\n", m.ServiceVisits)
			fmt.Fprintf(tw, "Volume\t%.2f %s\n", m.TotalVolume, volUnit)
			fmt.Fprintf(tw, "Fuel cost\t%.2f\n", m.TotalFuelCost)
			fmt.Fprintf(tw, "Service cost\t%.2f\n", m.TotalServiceCost)
			fmt.Fprintf(tw, "Avg per refuel\t%.2f\n", m.AvgCostPerRefuel)
			fmt.Fprintf(tw, "Avg per service\t%.2f\n", m.AvgCostPerService)
			fmt.Fprintf(tw, "Distance\t%d km\n", m.Distance)
			fmt.Fprintf(tw, "Efficiency\t%.2f %s\n", m.Efficiency, m.Unit)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&rangeName, "range", "month", "7d, month or year")
	cmd.Flags().StringVar(&from, "from", "", "Custom range start date")
	cmd.Flags().StringVar(&to, "to", "", "Custom range end date")
	return cmd
}
