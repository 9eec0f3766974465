// Command feedcheck parses a leaderboard CSV feed the way the server does and
// reports the rows it keeps and the lines it skips.
package main

import (
	"encoding/json/v2"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/gdgscriet/studyjam-server/internal/leaderboard"
)

func main() {
	asJSON := flag.Bool("json", false, "Print the parsed feed as JSON")
	search := flag.String("q", "", "Only show rows whose name contains this text")
	showRows := flag.Bool("rows", false, "List every kept row")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <feed.csv | ->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	feed, err := readFeed(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "feedcheck: %v\n", err)
		os.Exit(1)
	}
	feed.Rows = leaderboard.Search(feed.Rows, *search)

	if *asJSON {
		if err := json.MarshalWrite(os.Stdout, feed, json.Deterministic(true)); err != nil {
			fmt.Fprintf(os.Stderr, "feedcheck: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
	} else {
		report(os.Stdout, feed, *showRows || *search != "")
	}

	if len(feed.Malformed) > 0 {
		os.Exit(3)
	}
}

func readFeed(path string) (leaderboard.Feed, error) {
	if path == "-" {
		return leaderboard.ParseReader(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return leaderboard.Feed{}, err
	}
	defer f.Close()
	return leaderboard.ParseReader(f)
}

func report(w io.Writer, feed leaderboard.Feed, rows bool) {
	fmt.Fprintf(w, "rows:      %d\n", len(feed.Rows))
	fmt.Fprintf(w, "malformed: %d\n", len(feed.Malformed))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if rows && len(feed.Rows) > 0 {
		fmt.Fprintln(tw, "\nRANK\tNAME\tCOMPLETED\tPROFILE")
		for _, r := range feed.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Rank, r.Name, r.CompletionDate, r.ProfileURL)
		}
	}
	if len(feed.Malformed) > 0 {
		fmt.Fprintln(tw, "\nLINE\tREASON\tTEXT")
		for _, m := range feed.Malformed {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Line, m.Reason, m.Text)
		}
	}
	tw.Flush()
}
