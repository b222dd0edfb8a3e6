package agentbay

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewContextCmd creates the context command group
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage persistent storage contexts",
	}

	cmd.AddCommand(newContextListCmd())
	cmd.AddCommand(newContextCreateCmd())
	cmd.AddCommand(newContextDeleteCmd())

	return cmd
}

func newContextListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Contexts.List(cmd.Context())
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("context list failed")
			}

			writer := table.NewWriter()
			writer.SetOutputMirror(os.Stdout)
			writer.AppendHeader(table.Row{"ID", "Name"})
			for _, c := range result.Contexts {
				writer.AppendRow(table.Row{c.ID, c.Name})
			}
			writer.Render()
			return nil
		},
	}
}

func newContextCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Contexts.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("context create failed")
			}

			printSuccess("Context %s created (%s)", result.Context.Name, result.Context.ID)
			return nil
		},
	}
}

func newContextDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a context and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			got, err := client.Contexts.Get(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			if !got.Success {
				printError("%s", got.ErrorMessage)
				return fmt.Errorf("context delete failed")
			}

			result, err := client.Contexts.Delete(cmd.Context(), got.Context)
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("context delete failed")
			}

			printSuccess("Context %s deleted", args[0])
			return nil
		},
	}
}
