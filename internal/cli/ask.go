package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuestion string
	askTopK     int
)

var askCmd = &cobra.Command{
	Use:   "ask [paths...]",
	Short: "Ingest documents and answer a single question",
	Long: `Ingest the given files or directories, then answer one question and exit.

Examples:
  docqa ask ./docs -q "How does authentication work?"
  docqa ask report.pdf notes.md -q "What were the Q3 results?" -k 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := a.ingestPaths(ctx, args); err != nil {
		return err
	}

	answer, err := a.asker.Ask(ctx, "", askQuestion, askTopK)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, c := range answer.Citations {
			fmt.Printf("  [%d] %s (score %.3f)\n", i+1, c.DocName, c.Score)
		}
	}
	return nil
}
