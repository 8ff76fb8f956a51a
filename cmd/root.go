package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"triage/internal/app"
	"triage/internal/config"
	"triage/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage batch record classifier",
	Long: `Triage classifies batches of text records into categories.
It serves a WebApiSkill-style HTTP endpoint and can classify request files from the command line.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd == cmd.Root() {
			return nil
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logging.Setup(cfg.Log)

		appInstance, err := app.NewApp(cmd.Context(), cfg, log.StandardLogger())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context
		cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			return appInstance.Close()
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext returns the app built by the root PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.config/triage/config.yaml)")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and classifier connectivity",
	Long: `Validates the configuration, builds the configured classifier and
classifies a probe record through the batch handler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		out := cmd.OutOrStdout()
		cfg := appInstance.Config
		fmt.Fprintf(out, "Configuration OK.\n")
		fmt.Fprintf(out, "  classifier:  %s\n", appInstance.ClassifierName)
		fmt.Fprintf(out, "  concurrency: %d\n", cfg.Batch.Concurrency)
		fmt.Fprintf(out, "  listen:      %s:%d\n", cfg.Server.Addr, cfg.Server.Port)

		fmt.Fprintln(out, "Classifying probe record...")
		results, err := classifyBody(ctx, appInstance, []byte(`{"values":[{"recordId":"doctor","data":{"text":"This is urgent!"}}]}`))
		if err != nil {
			return fmt.Errorf("probe classification failed: %w", err)
		}
		probe := results.Values[0]
		if probe.Failed() {
			return fmt.Errorf("probe classification failed: %s", probe.Errors[0].Message)
		}

		fmt.Fprintf(out, "Classifier answered %q.\n", probe.Data.Category)
		return nil
	},
}
