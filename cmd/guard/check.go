package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var failOnViolation bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one guard cycle and print the result",
		Long: `Run a single guard cycle without notifying anyone and print the
poll result.

Examples:
  # Inspect a snapshot
  guard check --host-file host.yaml

  # Fail a CI job when a guest can see a dashboard
  guard check --host-file host.yaml --fail-on-violation`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			be, err := openBackends(backend, logger)
			if err != nil {
				return err
			}
			coord, err := newCoordinator(be, nil, logger)
			if err != nil {
				return err
			}
			res, err := coord.Refresh(ctx)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), outputFmt, res); err != nil {
				return err
			}
			if failOnViolation && len(res.Violations) > 0 {
				return fmt.Errorf("%d dashboard(s) visible to guests", len(res.Violations))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnViolation, "fail-on-violation", false, "Exit non-zero when violations are found")
	return cmd
}
