package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/search"
)

var (
	tagsSuggest string
	tagsLimit   int
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Lists tags with their post counts",
	Long: `The tags command lists every tag used by the indexed posts, most used
first. With --suggest it lists the tags that fuzzily match the given input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSite(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		tags := s.Index.TagCounts()
		if cmd.Flags().Changed("suggest") {
			tags = search.SuggestTags(tags, tagsSuggest, tagsLimit)
		} else if tagsLimit > 0 && len(tags) > tagsLimit {
			tags = tags[:tagsLimit]
		}
		for _, tag := range tags {
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", tag.Count, tag.Text)
		}
		return nil
	},
}

func init() {
	tagsCmd.Flags().StringVar(&tagsSuggest, "suggest", "", "fuzzy match tags against this input")
	tagsCmd.Flags().IntVar(&tagsLimit, "limit", 0, "maximum number of tags (0 for all)")
	rootCmd.AddCommand(tagsCmd)
}
