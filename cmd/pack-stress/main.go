package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

// cmdRoot is the base command when no other command has been specified.
var cmdRoot = &cobra.Command{
	Use:   "pack-stress",
	Short: "Stress and verify packed containers",
	Long: `
pack-stress drives packed containers through sustained churn and checks
every observation against independent bookkeeping: handles resolve to the
values inserted under them, removed handles stay stale, freed slots are
reused lowest index first, and storage stops growing once the live set has
peaked.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(0)
	},
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
