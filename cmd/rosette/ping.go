package rosette

import (
	"os"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the Rosette server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.Ping(cmd.Context())
		if err != nil {
			return err
		}
		return render(os.Stdout, result, outputFormat)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the Rosette server's version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.Info(cmd.Context())
		if err != nil {
			return err
		}
		return render(os.Stdout, result, outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(infoCmd)
}
