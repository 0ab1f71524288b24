package rosette

import (
	"os"

	"github.com/basistech/rosette-go/pkg/rosette"
	"github.com/spf13/cobra"
)

var (
	translateTarget     string
	translateEntityType string
	translateScheme     string
)

var translateNameCmd = &cobra.Command{
	Use:   "translate-name <name>",
	Short: "Translate a name into a target language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := rosette.NewNameTranslationParameters()
		if err := params.Set("name", args[0]); err != nil {
			return err
		}
		if err := params.Set("targetLanguage", translateTarget); err != nil {
			return err
		}
		if translateEntityType != "" {
			if err := params.Set("entityType", translateEntityType); err != nil {
				return err
			}
		}
		if translateScheme != "" {
			if err := params.Set("targetScheme", translateScheme); err != nil {
				return err
			}
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.NameTranslation(cmd.Context(), params)
		if err != nil {
			return err
		}
		return render(os.Stdout, result, outputFormat)
	},
}

var nameSimilarityCmd = &cobra.Command{
	Use:   "name-similarity <name1> <name2>",
	Short: "Score the similarity of two names",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := rosette.NewNameSimilarityParameters()
		if err := params.Set("name1", map[string]any{"text": args[0]}); err != nil {
			return err
		}
		if err := params.Set("name2", map[string]any{"text": args[1]}); err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.NameSimilarity(cmd.Context(), params)
		if err != nil {
			return err
		}
		return render(os.Stdout, result, outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(translateNameCmd)
	rootCmd.AddCommand(nameSimilarityCmd)

	translateNameCmd.Flags().StringVar(&translateTarget, "target-language", "", "ISO 639 code of the target language (required)")
	translateNameCmd.Flags().StringVar(&translateEntityType, "entity-type", "", "entity type of the name (PERSON, LOCATION, ORGANIZATION)")
	translateNameCmd.Flags().StringVar(&translateScheme, "target-scheme", "", "transliteration scheme for the result")
	translateNameCmd.MarkFlagRequired("target-language")
}
