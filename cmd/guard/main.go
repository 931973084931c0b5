// guard watches home-automation dashboards for guest access.
//
// Usage:
//
//	guard serve --host-file host.yaml --addr :8080
//	guard check --host-file host.yaml -o yaml
//	guard users list
//	guard seed --host-file host.yaml --consul-addr 127.0.0.1:8500
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/version"
)

var (
	outputFmt string
	logLevel  string
	backend   backendFlags
	overrides settingsFlags
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guard",
		Short: "Detect dashboards visible to guest users",
		Long: `guard scans dashboard and panel visibility, infers which accounts are
guests and raises a notification for every dashboard a guest can see.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&outputFmt, "output", "o", "json", "Output format: json, yaml")
	pf.StringVar(&logLevel, "log-level", config.Getenv("GUARD_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	backend.register(pf)
	overrides.register(pf)

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

func newLogger() (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logConfig.Level = zap.NewAtomicLevelAt(lvl)
	return logConfig.Build()
}
