package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command parses the Markdown files in the content directory,
indexes them, renders every page through the layouts (including partials),
copies static assets and writes the site to the output directory together
with rss.xml, sitemap.xml, the JSON indexes and the full-text search database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := runBuild(cmd.Context())
		if err != nil {
			return err
		}
		return s.Close()
	},
}

func newBuilder() *site.Builder {
	return site.NewBuilder(appConfig, siteParams, logger)
}

func runBuild(ctx context.Context) (*site.Site, error) {
	return newBuilder().Build(ctx)
}

// loadSite indexes the content without writing the output directory.
func loadSite(ctx context.Context) (*site.Site, error) {
	return newBuilder().Load(ctx)
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
