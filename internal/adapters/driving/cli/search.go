package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

var (
	searchLimit  int
	searchSource string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve contract passages",
	Long: `Embeds the query and returns the most similar passages from the
collection, without generating an answer.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annEmbedding: "true"},
	RunE:        runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default chat.top_k)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "only return passages from this file name")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	results, err := a.Search.Search(cmd.Context(), args[0], domain.SearchOptions{
		Limit:  searchLimit,
		Source: searchSource,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, passagesJSON(results))
	}
	outputSearchTable(cmd, results)
	return nil
}

// passageJSON is the JSON shape of a retrieved passage.
type passageJSON struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Section    string  `json:"section,omitempty"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

func passagesJSON(results []domain.SearchResult) []passageJSON {
	out := make([]passageJSON, 0, len(results))
	for _, r := range results {
		section, _ := r.Chunk.Metadata[domain.MetaSection].(string)
		out = append(out, passageJSON{
			ChunkID:    r.Chunk.ID,
			DocumentID: r.Chunk.DocumentID,
			Source:     r.Chunk.Source(),
			Section:    section,
			Position:   r.Chunk.Position,
			Score:      r.Score,
			Content:    r.Chunk.Content,
		})
	}
	return out
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No relevant documents found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, passageLabel(r), r.Score)
		cmd.Printf("      %s\n", preview(r.Chunk.Content, 160))
		cmd.Println()
	}
}

// passageLabel names a passage by source file and section.
func passageLabel(r domain.SearchResult) string {
	label := r.Chunk.Source()
	if label == "" {
		label = r.Chunk.DocumentID
	}
	if section, _ := r.Chunk.Metadata[domain.MetaSection].(string); section != "" {
		label += " · " + section
	}
	return label
}

// preview collapses whitespace and truncates to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
