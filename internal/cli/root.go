// Package cli implements the motorcheck command-line interface. Commands
// read a snapshot file in the same format as the API export.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/motorcheck/internal/models"
)

type options struct {
	file   string
	at     string
	asJSON bool
}

// NewRootCmd builds the motorcheck command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "motorcheck",
		Short: "Vehicle maintenance status from a snapshot file",
		Long: `motorcheck evaluates a vehicle snapshot (the JSON document returned by
GET /api/export) offline: service statuses, the reminder that would be sent,
and spending statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "motorcheck.json", "Snapshot file")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "Evaluate at this date (YYYY-MM-DD or RFC3339) instead of now")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")

	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newRemindCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) now() (time.Time, error) {
	if o.at == "" {
		return time.Now(), nil
	}
	return models.ParseDate(o.at)
}

func (o *options) load() (models.Snapshot, error) {
	data, err := os.ReadFile(o.file)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("parse snapshot %s: %w", o.file, err)
	}
	return snap, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.file); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.file)
			}
			data, err := json.MarshalIndent(models.DefaultSnapshot(), "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.file, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.file)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
