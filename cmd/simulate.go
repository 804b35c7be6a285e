package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/sim"
	"github.com/encodeous/dvroute/state"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a whole network in this process",
	Long: `Writes a neighbour file per router, starts every router, triggers the configured number of
broadcast rounds, sends the configured packets and finally stops every router.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := state.ReadNetConfig(path)
		if err != nil {
			panic(err)
		}
		dir, _ := cmd.Flags().GetString("dir")
		n, err := sim.NewNetwork(cfg, dir)
		if err != nil {
			panic(err)
		}
		n.Console = os.Stderr
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			n.Level = slog.LevelDebug
		}
		if ok, _ := cmd.Flags().GetBool("virtual"); ok {
			n.Virtual = core.NewInmemNetwork()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = n.Run(ctx)
		if err != nil {
			slog.Error("simulation failed", "err", err)
			os.Exit(1)
		}
		for _, rt := range cfg.Routers {
			slog.Info("final table", "router", rt.Id, "table", n.Routers()[rt.Id].Table.String())
		}
	},
	GroupID: "net",
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("config", "c", "topology.yaml", "Network topology")
	simulateCmd.Flags().StringP("dir", "d", ".", "Directory for neighbour files and logs")
	simulateCmd.Flags().Bool("virtual", false, "Use an in-memory network instead of UDP sockets")
	simulateCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
