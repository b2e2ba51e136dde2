package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage the known-client exclusion list",
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an institution to the exclusion list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.AddKnownClient(ctx, args[0]); err != nil {
			return eris.Wrap(err, "add known client")
		}

		zap.L().Info("known client added", zap.String("name", args[0]))
		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the exclusion list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		clients, err := st.LoadKnownClients(ctx)
		if err != nil {
			return eris.Wrap(err, "load known clients")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(clients)
	},
}

func init() {
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsListCmd)
	rootCmd.AddCommand(clientsCmd)
}
