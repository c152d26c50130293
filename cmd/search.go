package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/search"
)

var searchFlags struct {
	text, textOp, tagsOp, group, sort, path, format string
	tags                                            []string
	limit                                           int
	randomize, drafts, json                         bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches the site content",
	Long: `The search command filters the indexed posts by text and tags and prints
the matches grouped by folder or year. Page bodies are matched too when a
previous build left a full-text search database.`,
	Example: `  folio search --text "go" --tags web --group date
  folio search --tags go --tags cli --tags-op or --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSite(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		q := s.Searcher.ParseQuery(searchValues(cmd))
		res, err := s.Searcher.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		if searchFlags.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

// searchValues turns the flags that were set into query values, so parsing
// and defaults match the web API.
func searchValues(cmd *cobra.Command) url.Values {
	values := url.Values{}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			values.Set(key, value)
		}
	}
	set("text", "text", searchFlags.text)
	set("text-op", "textOp", searchFlags.textOp)
	set("tags-op", "tagsOp", searchFlags.tagsOp)
	set("group", "group", searchFlags.group)
	set("sort", "sort", searchFlags.sort)
	set("path", "path", searchFlags.path)
	set("format", "format", searchFlags.format)
	set("limit", "limit", strconv.Itoa(searchFlags.limit))
	set("randomize", "randomize", strconv.FormatBool(searchFlags.randomize))
	set("drafts", "excludeDrafts", strconv.FormatBool(!searchFlags.drafts))
	for _, tag := range searchFlags.tags {
		values.Add("tags", tag)
	}
	return values
}

func printResult(w io.Writer, res search.Result) {
	fmt.Fprintln(w, english.Plural(res.Total, "result", ""))
	var walk func(items []*model.Item, depth int)
	walk = func(items []*model.Item, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, item := range items {
			if item.IsFolder() {
				fmt.Fprintf(w, "%s%s\n", indent, item.Title)
				walk(item.Items, depth+1)
				continue
			}
			date := "          "
			if item.HasDate() {
				date = item.Date.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s%s  %s  %s", indent, date, item.Title, item.Link())
			if len(item.Tags) > 0 {
				fmt.Fprintf(w, "  [%s]", strings.Join(item.Tags, " "))
			}
			fmt.Fprintln(w)
		}
	}
	walk(res.Items, 0)
	if len(res.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(res.Tags, ", "))
	}
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.text, "text", "", "free text matched against title, description, tags and body")
	f.StringSliceVar(&searchFlags.tags, "tags", nil, "tags the posts must carry")
	f.StringVar(&searchFlags.textOp, "text-op", "and", "combine text terms with and|or")
	f.StringVar(&searchFlags.tagsOp, "tags-op", "and", "combine tags with and|or")
	f.StringVar(&searchFlags.group, "group", "path", "group results by path|date|none")
	f.StringVar(&searchFlags.sort, "sort", "date", "sort by date|path|random")
	f.IntVar(&searchFlags.limit, "limit", 0, "maximum number of results (0 for all)")
	f.StringVar(&searchFlags.path, "path", "", "only search below this path")
	f.StringVar(&searchFlags.format, "format", "image", "result format hint for layouts: image|text")
	f.BoolVar(&searchFlags.randomize, "randomize", false, "shuffle the results")
	f.BoolVar(&searchFlags.drafts, "drafts", false, "include drafts (development mode only)")
	f.BoolVar(&searchFlags.json, "json", false, "print the result as JSON")
	rootCmd.AddCommand(searchCmd)
}
