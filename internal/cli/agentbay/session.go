package agentbay

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agentbay/agentbay-go/pkg/agentbay/label"
	"github.com/agentbay/agentbay-go/pkg/agentbay/session"
	"github.com/agentbay/agentbay-go/pkg/agentbay/storage"
)

// NewSessionCmd creates the session command group
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage cloud sessions",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionLabelsCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var (
		imageID    string
		labelPairs []string
		contextID  string
		mountPath  string
		policyFile string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			labels, err := parseLabelFlags(labelPairs)
			if err != nil {
				return err
			}

			params := &session.CreateSessionParams{
				ImageID: imageID,
				Labels:  labels,
			}
			if contextID != "" {
				policy, err := loadSyncPolicy(policyFile)
				if err != nil {
					return err
				}
				params.ContextSyncs = []storage.ContextSync{
					*storage.NewContextSync(contextID, mountPath, policy),
				}
			}

			s := newSpinner("Creating session...")
			s.Start()
			result, err := client.Create(cmd.Context(), params)
			s.Stop()
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("session creation failed")
			}

			printSuccess("Session %s created (requestId=%s)", result.Session.SessionID, result.RequestID)
			return nil
		},
	}

	cmd.Flags().StringVar(&imageID, "image-id", "", "Image to boot the session from")
	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "Session label as key=value (repeatable)")
	cmd.Flags().StringVar(&contextID, "context-id", "", "Persistent context to sync into the session")
	cmd.Flags().StringVar(&mountPath, "path", "/data", "Mount path for the synced context")
	cmd.Flags().StringVar(&policyFile, "sync-policy", "", "YAML file with the context sync policy")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	var (
		labelPairs []string
		maxResults int32
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions by label",
		Long: `List sessions. With --label filters, the backend is queried; the result
may span multiple pages (--all follows them). Without filters, only the
sessions created by this invocation's registry are known, so a match-all
backend query is issued instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			labels, err := parseLabelFlags(labelPairs)
			if err != nil {
				return err
			}

			writer := table.NewWriter()
			writer.SetOutputMirror(os.Stdout)
			writer.AppendHeader(table.Row{"Session ID", "Labels"})

			if all {
				summaries, err := client.Sessions.ListAllByLabels(cmd.Context(), labels)
				if err != nil {
					return err
				}
				for _, summary := range summaries {
					writer.AppendRow(table.Row{summary.SessionID, summary.Labels})
				}
				writer.Render()
				return nil
			}

			result, err := client.ListByLabels(cmd.Context(), &session.ListSessionParams{
				Labels:     labels,
				MaxResults: maxResults,
			})
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("session list failed")
			}

			for _, summary := range result.Sessions {
				writer.AppendRow(table.Row{summary.SessionID, summary.Labels})
			}
			writer.Render()
			if result.NextToken != "" {
				fmt.Printf("More results available (total %d); rerun with --all\n", result.TotalCount)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "Label filter as key=value (repeatable)")
	cmd.Flags().Int32Var(&maxResults, "max-results", 0, "Page size (backend may return fewer)")
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination until exhausted")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [session-id]",
		Short: "Recover a session by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("session get failed")
			}

			s := result.Session
			writer := table.NewWriter()
			writer.SetOutputMirror(os.Stdout)
			writer.AppendRow(table.Row{"Session ID", s.SessionID})
			writer.AppendRow(table.Row{"Resource URL", s.ResourceURL})
			if s.FileTransferContextID != "" {
				writer.AppendRow(table.Row{"File Transfer Context", s.FileTransferContextID})
			}
			if len(s.Labels) > 0 {
				encoded, _ := label.Encode(s.Labels)
				writer.AppendRow(table.Row{"Labels", encoded})
			}
			writer.Render()
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	var syncContext bool

	cmd := &cobra.Command{
		Use:   "delete [session-id]",
		Short: "Release a session",
		Args:  cobra.ExactArgs(1),
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
				return fmt.Errorf("session delete failed")
			}

			s := newSpinner("Releasing session...")
			s.Start()
			result, err := client.Delete(cmd.Context(), got.Session, syncContext)
			s.Stop()
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s (requestId=%s)", result.ErrorMessage, result.RequestID)
				return fmt.Errorf("session delete failed")
			}

			printSuccess("Session %s released", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&syncContext, "sync-context", false,
		"Flush synced storage contexts before teardown")

	return cmd
}

func newSessionLabelsCmd() *cobra.Command {
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "labels [session-id]",
		Short: "Show or set session labels",
		Args:  cobra.ExactArgs(1),
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
				return fmt.Errorf("session labels failed")
			}

			if len(setPairs) > 0 {
				labels, err := parseLabelFlags(setPairs)
				if err != nil {
					return err
				}
				result, err := got.Session.SetLabels(cmd.Context(), labels)
				if err != nil {
					return err
				}
				if !result.Success {
					printError("%s", result.ErrorMessage)
					return fmt.Errorf("session labels failed")
				}
				printSuccess("Labels updated")
				return nil
			}

			result, err := got.Session.GetLabels(cmd.Context())
			if err != nil {
				return err
			}
			if !result.Success {
				printError("%s", result.ErrorMessage)
				return fmt.Errorf("session labels failed")
			}

			writer := table.NewWriter()
			writer.SetOutputMirror(os.Stdout)
			writer.AppendHeader(table.Row{"Key", "Value"})
			for key, value := range result.Labels {
				writer.AppendRow(table.Row{key, value})
			}
			writer.Render()
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Replace labels with key=value (repeatable)")

	return cmd
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	return s
}

func loadSyncPolicy(path string) (*storage.SyncPolicy, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync policy file: %w", err)
	}
	var policy storage.SyncPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse sync policy: %w", err)
	}
	return &policy, nil
}
