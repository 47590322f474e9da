package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [paths...]",
	Short: "Ingest documents and start an interactive chat",
	Long: `Ingest the given files or directories, then open an interactive chat.
Recent turns feed back into the prompt so follow-up questions work.

Example:
  docqa chat ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}

	if err := a.ingestPaths(cmd.Context(), args); err != nil {
		return err
	}

	stats := a.store.Stats()
	summary := fmt.Sprintf("%d documents, %d passages loaded. Ctrl+C to quit.",
		stats.Documents, stats.Passages)

	program := tea.NewProgram(tui.New(a.asker, summary), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
