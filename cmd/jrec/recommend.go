package main

import (
	"errors"
	"strings"

	"github.com/matsen/jrec/internal/pdf"
	"github.com/matsen/jrec/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	recTitle    string
	recAbstract string
	recKeywords string
	recPDF      string
	recModelDir string
	recDataset  string
	recTopK     int
)

func init() {
	recommendCmd.Flags().StringVar(&recTitle, "title", "", "Manuscript title")
	recommendCmd.Flags().StringVar(&recAbstract, "abstract", "", "Manuscript abstract")
	recommendCmd.Flags().StringVar(&recKeywords, "keywords", "", "Author keywords")
	recommendCmd.Flags().StringVar(&recPDF, "pdf", "", "Read title, abstract and keywords from a PDF")
	recommendCmd.Flags().StringVar(&recModelDir, "model-dir", "", "Directory holding vectorizer.json and kmeans.json (default from config)")
	recommendCmd.Flags().StringVar(&recDataset, "dataset", "", "Clustered journal dataset CSV (default from config)")
	recommendCmd.Flags().IntVarP(&recTopK, "top-k", "k", 0, "Journals per ranking (default from config)")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend journals for a manuscript",
	Long: `Place a manuscript in a topic cluster and list that cluster's journals
ranked by SJR and by textual similarity.

Title and abstract are required. With --pdf they are read from the first
pages of the document; explicit flags override what the PDF provides.`,
	Example: `  jrec recommend --title "Soil carbon under drought" --abstract "We measured..."
  jrec recommend --pdf manuscript.pdf --human`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

// RecommendResult is the response for the recommend command.
type RecommendResult struct {
	Query recommend.Query `json:"query"`
	*recommend.Result
}

func runRecommend(cmd *cobra.Command, args []string) error {
	var manuscript *pdf.Manuscript
	if recPDF != "" {
		m, err := pdf.ReadManuscript(recPDF, pdf.DefaultMaxPages)
		if err != nil {
			return withCode(ExitDataError, "reading %s: %v", recPDF, err)
		}
		manuscript = &m
	}

	query := buildQuery(manuscript, recTitle, recAbstract, recKeywords)
	if err := query.Validate(); err != nil {
		return withCode(recommendExitCode(err), "%v", err)
	}

	modelDir := firstNonEmpty(recModelDir, cfg.Recommender.ModelDir)
	dataset := firstNonEmpty(recDataset, cfg.Recommender.Dataset)
	topK := cfg.Recommender.TopK
	if recTopK > 0 {
		topK = recTopK
	}

	r, err := recommend.Load(modelDir, dataset,
		recommend.WithTopK(topK),
		recommend.WithLogger(log),
	)
	if err != nil {
		return withCode(recommendExitCode(err), "%v", err)
	}

	result, err := r.Recommend(query)
	if err != nil {
		return withCode(recommendExitCode(err), "%v", err)
	}

	if !humanOutput {
		return outputJSON(RecommendResult{Query: query, Result: result})
	}
	printRecommendHuman(query, result)
	return nil
}

// buildQuery fills the query from the PDF manuscript, then lets non-empty
// flag values replace individual fields.
func buildQuery(m *pdf.Manuscript, title, abstract, keywords string) recommend.Query {
	var q recommend.Query
	if m != nil {
		q = recommend.Query{Title: m.Title, Abstract: m.Abstract, Keywords: m.Keywords}
	}
	if strings.TrimSpace(title) != "" {
		q.Title = title
	}
	if strings.TrimSpace(abstract) != "" {
		q.Abstract = abstract
	}
	if strings.TrimSpace(keywords) != "" {
		q.Keywords = keywords
	}
	return q
}

func recommendExitCode(err error) int {
	switch {
	case errors.Is(err, recommend.ErrModelNotFound):
		return ExitModelNotFound
	case errors.Is(err, recommend.ErrDatasetNotFound),
		errors.Is(err, recommend.ErrIncompleteQuery),
		errors.Is(err, recommend.ErrEmptyCluster):
		return ExitDataError
	default:
		return ExitError
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printRecommendHuman(q recommend.Query, r *recommend.Result) {
	outputHuman("%s\n", truncateString(q.Title, SearchTitleMaxLen))
	outputHuman("Cluster %d (%d candidate rows)\n\n", r.Cluster, r.Candidates)

	outputHuman("By SJR\n")
	for _, j := range r.BySJR {
		outputHuman("%3d. %-*s %8.3f\n", j.Rank, TableNameMaxLen, truncateString(j.Journal, TableNameMaxLen), j.SJR)
	}

	outputHuman("\nBy similarity\n")
	for _, j := range r.BySimilarity {
		outputHuman("%3d. %-*s %8.3f %6.1f%%\n", j.Rank, TableNameMaxLen, truncateString(j.Journal, TableNameMaxLen), j.SJR, j.Similarity)
		if j.Title != "" {
			outputHuman("     %s\n", truncateString(j.Title, SearchTitleMaxLen))
		}
	}
}
