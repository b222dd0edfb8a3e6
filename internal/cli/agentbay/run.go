package agentbay

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		codeFile  string
		language  string
		timeoutMs int32
	)

	cmd := &cobra.Command{
		Use:   "run [session-id] -- [command...]",
		Short: "Run a command or code in a session",
		Long: `Run a shell command or a code snippet inside an existing session.

Examples:
  agentbay run session-abc123 -- uname -a
  agentbay run session-abc123 --code script.py --language python`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			got, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !got.Success {
				printError("%s", got.ErrorMessage)
				return fmt.Errorf("run failed")
			}

			if codeFile != "" {
				code, err := os.ReadFile(codeFile)
				if err != nil {
					return fmt.Errorf("failed to read code file: %w", err)
				}
				result, err := got.Session.Command.RunCode(cmd.Context(), string(code), language, timeoutMs)
				if err != nil {
					return err
				}
				if !result.Success {
					printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
					return fmt.Errorf("run failed")
				}
				fmt.Print(result.Output)
				return nil
			}

			if len(args) < 2 {
				return fmt.Errorf("no command given; pass it after -- or use --code")
			}

			shellCmd := strings.Join(args[1:], " ")
			result, err := got.Session.Command.ExecuteCommand(cmd.Context(), shellCmd, timeoutMs)
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("run failed")
			}
			fmt.Print(result.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&codeFile, "code", "", "File with code to execute instead of a shell command")
	cmd.Flags().StringVar(&language, "language", "python", "Language of the code file")
	cmd.Flags().Int32Var(&timeoutMs, "timeout-ms", 0, "Execution timeout in milliseconds")

	return cmd
}
