package cmd

import (
	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:     "send",
	Short:   "Send a control message to a running router",
	GroupID: "net",
}

func sendMessage(cmd *cobra.Command, portArg string, msg protocol.Message) error {
	port, err := state.ParsePort(portArg)
	if err != nil {
		return err
	}
	host, _ := cmd.Flags().GetString("host")
	tr, err := core.ListenUdp(host, 0)
	if err != nil {
		return err
	}
	defer tr.Close()
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return tr.Send(port, data)
}

var sendTableCmd = &cobra.Command{
	Use:   "table <port>",
	Short: "Ask a router to advertise its table to its neighbours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendMessage(cmd, args[0], &protocol.SendTable{})
	},
}

var sendExitCmd = &cobra.Command{
	Use:   "exit <port>",
	Short: "Stop a router",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendMessage(cmd, args[0], &protocol.Exit{})
	},
}

var sendDataCmd = &cobra.Command{
	Use:   "data <port>",
	Short: "Inject a data packet at a router",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		msg, _ := cmd.Flags().GetString("msg")
		for _, name := range []string{from, to} {
			if err := state.NameValidator(name); err != nil {
				return err
			}
		}
		return sendMessage(cmd, args[0], &protocol.DataPacket{
			Source:      state.NodeId(from),
			Destination: state.NodeId(to),
			Msg:         msg,
		})
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.AddCommand(sendTableCmd, sendExitCmd, sendDataCmd)

	sendCmd.PersistentFlags().String("host", state.DefaultHost, "Host the router listens on")
	sendDataCmd.Flags().String("from", "", "Source router")
	sendDataCmd.Flags().String("to", "", "Destination router")
	sendDataCmd.Flags().String("msg", "", "Payload")
	_ = sendDataCmd.MarkFlagRequired("from")
	_ = sendDataCmd.MarkFlagRequired("to")
}
