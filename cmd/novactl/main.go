// novactl previews ritual prompts and reports whether the Nova Act runtime
// would be used, without starting the bridge server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/neuronudge/nova-bridge/internal/automation"
	"github.com/neuronudge/nova-bridge/internal/config"
	"github.com/neuronudge/nova-bridge/internal/domain"
	"github.com/neuronudge/nova-bridge/internal/nova"
	"github.com/neuronudge/nova-bridge/internal/prompt"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "novactl",
		Short:         "Inspect the Nova bridge rituals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt a ritual would send to Nova Act",
	}
	promptCmd.AddCommand(newBreakCmd(), newReentryCmd())

	rootCmd.AddCommand(promptCmd, newStatusCmd())
	return rootCmd
}

func newBreakCmd() *cobra.Command {
	var (
		seconds      int
		kind         string
		muteSlack    bool
		breathingURL string
	)
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Render the break-ritual prompt",
		Example: `  novactl prompt break --seconds 90
  novactl prompt break --seconds 300 --mute-slack=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := domain.NewBreakRitualRequest(domain.BreakRitualInput{
				Seconds:   &seconds,
				Kind:      &kind,
				MuteSlack: &muteSlack,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.BreakRitual(req, prompt.BreakOptions{BreathingURL: breathingURL}))
			return nil
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", domain.DefaultRitualSeconds, "Ritual length in seconds (30-900)")
	cmd.Flags().StringVar(&kind, "kind", domain.DefaultRitualKind, "Ritual kind label")
	cmd.Flags().BoolVar(&muteSlack, "mute-slack", true, "Ask Nova to pause Slack notifications first")
	cmd.Flags().StringVar(&breathingURL, "breathing-url", prompt.DefaultBreathingURL, "Breathing page opened by the ritual")
	return cmd
}

func newReentryCmd() *cobra.Command {
	var url, note, selectorHint string
	cmd := &cobra.Command{
		Use:     "reentry",
		Short:   "Render the re-entry prompt",
		Example: `  novactl prompt reentry --url https://docs.google.com/document/d/123 --note "finish the conclusion"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := domain.NewReentryRequest(domain.ReentryInput{
				URL:          &url,
				Note:         &note,
				SelectorHint: &selectorHint,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.Reentry(req))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Page to return to (required)")
	cmd.Flags().StringVar(&note, "note", "", "Reminder typed at the caret")
	cmd.Flags().StringVar(&selectorHint, "selector-hint", domain.DefaultSelectorHint, "CSS selector of the editable area")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether rituals would reach Nova Act or run in dry-run mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var backend automation.Backend
			if cfg.Nova.Endpoint != "" {
				backend = nova.NewClient(nova.Config{Endpoint: cfg.Nova.Endpoint}, http.DefaultClient, nil)
			}
			d := automation.NewDispatcher(backend)

			out := cmd.OutOrStdout()
			endpoint := cfg.Nova.Endpoint
			if endpoint == "" {
				endpoint = "(not set)"
			}
			fmt.Fprintf(out, "endpoint:       %s\n", endpoint)
			fmt.Fprintf(out, "credential set: %t\n", strings.TrimSpace(os.Getenv(automation.CredentialEnv)) != "")
			if d.Available() {
				fmt.Fprintln(out, "mode:           nova")
			} else {
				fmt.Fprintf(out, "mode:           dry-run (skipped=%s)\n", automation.SkipReasonUnavailable)
			}
			return nil
		},
	}
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
