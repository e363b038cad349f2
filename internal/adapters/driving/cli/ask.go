package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from the contracts",
	Long: `Retrieves the passages most similar to the question and asks the
completion model to answer from them. Prints the answer and its sources.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annEmbedding: "true", annLLM: "true"},
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

type answerJSON struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Sources  []passageJSON `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	answer, err := a.Answer.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if askJSON {
		return outputJSON(cmd, answerJSON{
			Question: answer.Question,
			Answer:   answer.Text,
			Sources:  passagesJSON(answer.Sources),
		})
	}
	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	if len(answer.Sources) == 0 {
		cmd.Println("No relevant documents found.")
		return
	}
	cmd.Println(answer.Text)
	cmd.Println()
	heading(cmd, "Sources")
	for i, r := range answer.Sources {
		cmd.Printf("  [%d] %s %s\n", i+1, passageLabel(r), muted(fmt.Sprintf("(%.3f)", r.Score)))
	}
}
