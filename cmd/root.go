package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvroute",
	Short: "Distance-vector routing simulator",
	Long: `dvroute runs routers that only know their direct neighbours and exchange distance vectors over UDP.
Once the tables converge, data packets are forwarded hop by hop along the shortest path.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "node",
		Title: "Router Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "net",
		Title: "Network Commands",
	})
}
