package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kubevalid",
	Short: "Batch validation for Kubernetes and Terraform files",
	Long: `Kubevalid clones a repository (or scans local paths), validates every
Kubernetes manifest and Terraform file it finds with external checkers, and
produces an aggregated report with an AI-generated analysis.`,
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
}
