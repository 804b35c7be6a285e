package cmd

import (
	"context"
	"log/slog"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <neighbour-file> <node-id> <port>",
	Short: "Run a single router",
	Long: `Runs one router until it receives an exit message.
The neighbour file has one "name cost port" line per direct neighbour.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		port, err := state.ParsePort(args[2])
		if err != nil {
			panic(err)
		}
		cfg := state.LocalCfg{
			Id:            state.NodeId(args[1]),
			Port:          port,
			NeighbourPath: args[0],
		}
		cfg.Host, _ = cmd.Flags().GetString("host")
		cfg.LogPath, _ = cmd.Flags().GetString("log")
		if cfg.LogPath == "" {
			cfg.LogPath = state.DefaultLogPath(state.DefaultLogDir, cfg.Id)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		addr, _ := cmd.Flags().GetString("debug-addr")
		core.SetupDebugging(addr)

		err = core.Start(context.Background(), cfg, level)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "node",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringP("log", "l", "", "Log file, defaults to logs/<node-id>_log.txt")
	runCmd.Flags().String("host", state.DefaultHost, "Host every port is resolved against")
	runCmd.Flags().String("debug-addr", "", "Serve pprof, expvar and /debug/metrics on this address")
}
