package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"guest-dashboard-guard/pkg/consul"
	"guest-dashboard-guard/pkg/hostfile"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Copy a host snapshot file into Consul",
		Long: `Write the users, dashboards, panels and visibility of a host snapshot
file into Consul KV so serve --host-backend consul can watch them.

Examples:
  guard seed --host-file host.yaml --consul-addr 127.0.0.1:8500`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := hostfile.ReadFile(backend.hostFile)
			if err != nil {
				return err
			}
			reg, err := openConsul(backend)
			if err != nil {
				return err
			}
			n, err := seedConsul(reg, snap)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d keys from %s\n", n, backend.hostFile)
			return err
		},
	}
}

func seedConsul(reg *consul.Registry, snap hostfile.Snapshot) (int, error) {
	n := 0
	for _, u := range snap.Users {
		if err := reg.PutUser(u); err != nil {
			return n, err
		}
		n++
	}
	if snap.Lovelace != nil {
		for _, d := range *snap.Lovelace {
			if err := reg.PutLovelace(d); err != nil {
				return n, err
			}
			n++
		}
	}
	if snap.Legacy != nil {
		for _, d := range *snap.Legacy {
			if err := reg.PutLegacy(d); err != nil {
				return n, err
			}
			n++
		}
	}
	if snap.Panels != nil {
		for _, p := range *snap.Panels {
			if err := reg.PutPanel(p); err != nil {
				return n, err
			}
			n++
		}
	}
	for key, v := range snap.Visibility {
		if err := reg.PutVisibility(key, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
