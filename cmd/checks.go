package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/kubevalid/pkg/wrappers"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the lint checks the installed kube-linter supports",
	Run: func(cmd *cobra.Command, args []string) {
		linter := &wrappers.KubeLinterChecker{}
		checks, err := linter.ListChecks(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, c := range checks {
			fmt.Println(c)
		}
	},
}

func init() {
	rootCmd.AddCommand(checksCmd)
}
