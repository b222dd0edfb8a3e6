package agentbay

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentbay/agentbay-go/internal/config"
	sdk "github.com/agentbay/agentbay-go/pkg/agentbay"
)

// NewAgentBayCmd creates the root agentbay command
func NewAgentBayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentbay",
		Short: "AgentBay cloud session commands",
		Long: `Manage AgentBay cloud agent sessions: create and release ephemeral
sessions, run commands inside them, attach persistent storage contexts, and
search sessions by label.

The API key is read from --api-key, AGENTBAY_API_KEY, or ~/.agentbay.yaml.

Examples:
  agentbay session create --label owner=team-b
  agentbay session list --label owner=team-b --all
  agentbay run session-abc123 -- uname -a
  agentbay context create persistent-data`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("api-key", "", "API key (default: AGENTBAY_API_KEY)")
	cmd.PersistentFlags().String("region", "", "Backend region")
	cmd.PersistentFlags().String("endpoint", "", "Backend endpoint override")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose request logging")

	cmd.AddCommand(NewSessionCmd())
	cmd.AddCommand(NewContextCmd())
	cmd.AddCommand(NewRunCmd())

	return cmd
}

// newSDKClient builds an SDK client from flags, environment, and config file.
func newSDKClient(cmd *cobra.Command) (*sdk.Client, error) {
	v := viper.New()
	_ = v.BindPFlag("api_key", cmd.Flags().Lookup("api-key"))
	_ = v.BindPFlag("region", cmd.Flags().Lookup("region"))
	_ = v.BindPFlag("endpoint", cmd.Flags().Lookup("endpoint"))
	_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logr.Discard()
	if cfg.Verbose {
		stdr.SetVerbosity(1)
		logger = stdr.New(log.New(os.Stderr, "", log.LstdFlags))
	}

	opts := []sdk.Option{sdk.WithLogger(logger)}
	if cfg.Region != "" {
		opts = append(opts, sdk.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, sdk.WithEndpoint(cfg.Endpoint))
	}

	return sdk.NewClient(cfg.APIKey, opts...)
}

// parseLabelFlags turns repeated key=value flags into a label map.
func parseLabelFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	labels := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid label %q: expected key=value", pair)
		}
		labels[key] = value
	}
	return labels, nil
}

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

func printSuccess(format string, args ...any) {
	successColor.Fprintf(os.Stdout, format+"\n", args...)
}

func printError(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, format+"\n", args...)
}
