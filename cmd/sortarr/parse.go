package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/sortarr/pkg/parse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <filename>...",
	Short: "Parse media filenames (local, no network)",
	Long: `Parse filenames to show what sortarr extracts from them, including
which parsing strategy produced the result.

Examples:
  sortarr parse "Frieren.S01E05.1080p.WEB-DL.mkv"
  sortarr parse "[SubsPlease] Sousou no Frieren - 05 (1080p).mkv"
  sortarr parse --file names.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "Read filenames from file (one per line)")
}

// parseResultJSON is the JSON-friendly form of a parse result.
type parseResultJSON struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
	Movie   bool   `json:"movie"`
	Parser  string `json:"parser"`
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")

	var names []string
	if inputFile != "" {
		read, err := readNamesFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		names = read
	} else if len(args) > 0 {
		names = args
	} else {
		return fmt.Errorf("usage: sortarr parse <filename> or sortarr parse --file <filename>")
	}

	var results []parseResultJSON
	for _, name := range names {
		info := parse.Parse(name)
		results = append(results, parseResultJSON{
			Source:  name,
			Title:   info.Title,
			Year:    info.Year,
			Season:  info.Season,
			Episode: info.Episode,
			Movie:   info.IsMovie,
			Parser:  info.Parser,
		})
	}

	if jsonOutput {
		return outputParseJSON(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		printParsed(r)
	}
	return nil
}

func printParsed(r parseResultJSON) {
	fmt.Printf("Source:   %s\n", r.Source)
	fmt.Printf("Title:    %s\n", r.Title)
	if r.Year > 0 {
		fmt.Printf("Year:     %d\n", r.Year)
	}
	if !r.Movie {
		fmt.Printf("Season:   %d\n", r.Season)
		fmt.Printf("Episode:  %d\n", r.Episode)
	}
	fmt.Printf("Type:     %s\n", mediaTypeName(r.Movie))
	fmt.Printf("Parser:   %s\n", r.Parser)
}

func mediaTypeName(movie bool) string {
	if movie {
		return "movie"
	}
	return "series"
}

func outputParseJSON(results []parseResultJSON) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// readNamesFile reads filenames from a file, one per line.
func readNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}
