package cmd

import (
	"github.com/spf13/cobra"
)

var rootDir string

func init() {
	RootCmd.AddCommand(InitCmd)
	RootCmd.AddCommand(RunCmd)
	RootCmd.AddCommand(SignCmd)
	RootCmd.PersistentFlags().StringVar(&rootDir, "home", "./fshome", "Home directory of the flight surety node")
}

var RootCmd = cobra.Command{
	Use:   "flightsurety",
	Short: "Flight surety node",
}
