package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "metricsd",
	Short: "Metricsd - Prometheus metrics endpoint with sidecar merge",
	Long: `Metricsd exposes the request-tracking metrics of a service on a plain
HTTP endpoint and appends the text exposition of a co-located moleculer
sidecar to every scrape.`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $METRICSD_CONFIG_DIR/metricsd.yaml when present)")
}
