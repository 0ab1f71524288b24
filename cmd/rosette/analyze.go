package rosette

import (
	"context"
	"fmt"
	"os"

	"github.com/basistech/rosette-go/pkg/rosette"
	"github.com/spf13/cobra"
)

var (
	analyzeFile     string
	analyzeURI      string
	analyzeLanguage string
	analyzeFacet    string
	analyzeLinked   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <endpoint> [text]",
	Short: "Run a document analysis endpoint over text, a file, or a URI",
	Long: `Analyze sends a document to one of the Rosette analysis endpoints:
language, sentences, tokens, morphology, entities, categories, sentiment,
relationships.

Input is the positional text argument, a file (--file, uploaded as
multipart), or a web page the server fetches itself (--content-uri).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read the document from a file")
	analyzeCmd.Flags().StringVar(&analyzeURI, "content-uri", "", "let the server fetch the document from a URL")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "language hint for the document")
	analyzeCmd.Flags().StringVar(&analyzeFacet, "facet", string(rosette.MorphologyComplete), "morphology facet (lemmas, parts-of-speech, compound-components, han-readings, complete)")
	analyzeCmd.Flags().BoolVar(&analyzeLinked, "linked", false, "resolve entities to linked knowledge-base entries")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	params := rosette.NewDocumentParameters()
	switch {
	case analyzeFile != "":
		if err := params.LoadDocumentFile(analyzeFile); err != nil {
			return err
		}
	case analyzeURI != "":
		if err := params.Set("contentUri", analyzeURI); err != nil {
			return err
		}
	case len(args) == 2:
		params.LoadDocumentString(args[1])
	default:
		return fmt.Errorf("no input: supply text, --file or --content-uri")
	}
	if analyzeLanguage != "" {
		if err := params.Set("language", analyzeLanguage); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := callEndpoint(cmd.Context(), client, endpoint, params)
	if err != nil {
		return err
	}
	return render(os.Stdout, result, outputFormat)
}

func callEndpoint(ctx context.Context, client *rosette.Client, endpoint string, params *rosette.DocumentParameters) (map[string]any, error) {
	switch endpoint {
	case "language":
		return client.Language(ctx, params)
	case "sentences":
		return client.Sentences(ctx, params)
	case "tokens":
		return client.Tokens(ctx, params)
	case "morphology":
		return client.Morphology(ctx, params, rosette.MorphologyFacet(analyzeFacet))
	case "entities":
		return client.Entities(ctx, params, analyzeLinked)
	case "categories":
		return client.Categories(ctx, params)
	case "sentiment":
		return client.Sentiment(ctx, params)
	case "relationships":
		return client.Relationships(ctx, params)
	default:
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
}
