// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/poiesic/relsearch"
	"github.com/poiesic/relsearch/cluster"
	"github.com/poiesic/relsearch/config"
	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/expansion"
	"github.com/poiesic/relsearch/serp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "relsearch",
		Usage: "Discover related searches and rank the phrases they share",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML or YAML config file",
				EnvVars: []string{"RELSEARCH_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "related",
				Usage:     "Expand a seed query through autocomplete suggestions",
				ArgsUsage: "<seed query>",
				Action:    relatedCommand,
				Flags: append(append(suggestFlags(), analysisFlags()...),
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"d"},
						Usage:   "Expansion rounds after the seed",
						Value:   1,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetches per round",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "cluster",
						Usage: "Group discovered queries by embedding similarity",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Hide progress output",
					},
				),
			},
			{
				Name:      "serp",
				Usage:     "Rank the phrases of organic result titles and snippets",
				ArgsUsage: "<query>",
				Action:    serpCommand,
				Flags: append(analysisFlags(),
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Custom Search API key",
						EnvVars: []string{"RELSEARCH_SERP_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "engine-id",
						Usage:   "Custom Search engine id (cx)",
						EnvVars: []string{"RELSEARCH_SERP_ENGINE_ID"},
					},
					&cli.StringFlag{
						Name:  "serp-endpoint",
						Usage: "Custom Search API endpoint",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Interface language of results",
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Two-letter country to boost",
					},
					&cli.IntFlag{
						Name:  "results",
						Usage: "Number of organic results to analyze",
					},
				),
			},
			{
				Name:   "analyze",
				Usage:  "Rank the phrases of lines read from a file or stdin",
				Action: analyzeCommand,
				Flags: append(analysisFlags(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Input file with one item per line (default: stdin)",
					},
				),
			},
			{
				Name:  "cache",
				Usage: "Manage the suggestion cache",
				Subcommands: []*cli.Command{
					{
						Name:   "purge",
						Usage:  "Remove every cached suggestion response",
						Action: purgeCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "cache-dir",
								Usage: "Path to the cache database directory",
							},
						},
					},
				},
			},
		},
	}
}

func suggestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "locale",
			Usage: "Autocomplete interface language (hl)",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Autocomplete endpoint URL",
		},
		&cli.StringFlag{
			Name:  "limiter",
			Usage: "Rate limiter: jitter, token or none",
		},
		&cli.DurationFlag{
			Name:  "min-delay",
			Usage: "Shortest pause between suggestion calls",
		},
		&cli.DurationFlag{
			Name:  "max-delay",
			Usage: "Longest pause between suggestion calls",
		},
		&cli.DurationFlag{
			Name:  "call-timeout",
			Usage: "Timeout for each suggestion call",
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "Cache suggestion responses on disk",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Path to the cache database directory",
		},
	}
}

func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "phrase-length",
			Aliases: []string{"n"},
			Usage:   "Longest phrase to count",
		},
		&cli.IntFlag{
			Name:  "min-frequency",
			Usage: "Drop phrases seen fewer times",
		},
		&cli.BoolFlag{
			Name:  "stop-words",
			Usage: "Remove common English stop words",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Rows of the phrase table to print (0 prints all)",
		},
	}
}

// loadConfig reads the config file, if any, and applies flags set on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("locale") {
		cfg.Suggest.Locale = c.String("locale")
	}
	if c.IsSet("endpoint") {
		cfg.Suggest.Endpoint = c.String("endpoint")
	}
	if c.IsSet("limiter") {
		cfg.RateLimit.Mode = c.String("limiter")
	}
	if c.IsSet("min-delay") {
		cfg.RateLimit.MinDelay = c.Duration("min-delay")
	}
	if c.IsSet("max-delay") {
		cfg.RateLimit.MaxDelay = c.Duration("max-delay")
	}
	if c.IsSet("call-timeout") {
		cfg.Expansion.CallTimeout = c.Duration("call-timeout")
	}
	if c.IsSet("depth") {
		cfg.Expansion.Depth = c.Int("depth")
	}
	if c.IsSet("workers") {
		cfg.Expansion.Workers = c.Int("workers")
	}
	if c.IsSet("cache") {
		cfg.Cache.Enabled = c.Bool("cache")
	}
	if c.IsSet("cache-dir") {
		cfg.Cache.Path = c.String("cache-dir")
	}
	if c.IsSet("cluster") {
		cfg.Cluster.Enabled = c.Bool("cluster")
	}
	if c.IsSet("phrase-length") {
		cfg.Analysis.MaxPhraseLength = c.Int("phrase-length")
	}
	if c.IsSet("min-frequency") {
		cfg.Analysis.MinFrequency = c.Int("min-frequency")
	}
	if c.IsSet("stop-words") {
		cfg.Analysis.StopWords = c.Bool("stop-words")
	}
	if c.IsSet("limit") {
		cfg.Analysis.Limit = c.Int("limit")
	}
	if c.IsSet("api-key") {
		cfg.SERP.APIKey = c.String("api-key")
	}
	if c.IsSet("engine-id") {
		cfg.SERP.EngineID = c.String("engine-id")
	}
	if c.IsSet("serp-endpoint") {
		cfg.SERP.Endpoint = c.String("serp-endpoint")
	}
	if c.IsSet("language") {
		cfg.SERP.Language = c.String("language")
	}
	if c.IsSet("country") {
		cfg.SERP.Country = c.String("country")
	}
	if c.IsSet("results") {
		cfg.SERP.MaxResults = c.Int("results")
	}

	return cfg, nil
}

func relatedCommand(c *cli.Context) error {
	seed := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(seed) == "" {
		return cli.Exit("a seed query is required", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	tk, err := relsearch.NewToolkit(cfg, relsearch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer tk.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	var monitor expansion.Monitor
	if !c.Bool("quiet") {
		monitor = expansion.NewProgressTracker(c.App.ErrWriter)
	}

	report, err := tk.Related(ctx, seed, cfg.Expansion.Depth, monitor)
	if report == nil {
		return err
	}

	out := c.App.Writer
	printQueries(out, report.Expansion)
	fmt.Fprintln(out)
	printRecords(out, "Phrases", report.Records, cfg.Analysis.Limit)
	if len(report.Clusters) > 0 {
		fmt.Fprintln(out)
		printClusters(out, report.Clusters)
	}
	printPartialWarning(c.App.ErrWriter, report.Expansion)

	if err != nil {
		if errors.Is(err, expansion.ErrExpansionCancelled) {
			return cli.Exit("expansion interrupted", 130)
		}
		return err
	}
	return nil
}

func serpCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.Exit("a query is required", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	tk, err := relsearch.NewToolkit(cfg, relsearch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer tk.Close()

	report, err := tk.AnalyzeSERP(c.Context, query)
	if err != nil {
		return err
	}

	out := c.App.Writer
	printResults(out, report.Results)
	fmt.Fprintln(out)
	printRecords(out, "Title phrases", report.Titles, cfg.Analysis.Limit)
	fmt.Fprintln(out)
	printRecords(out, "Snippet phrases", report.Snippets, cfg.Analysis.Limit)
	return nil
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var in io.Reader = c.App.Reader
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var corpus []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			corpus = append(corpus, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	tk, err := relsearch.NewToolkit(cfg, relsearch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer tk.Close()

	analyzer, err := tk.NewAnalyzer()
	if err != nil {
		return err
	}
	analysis, err := analyzer.AnalyzeDetailed(corpus)
	if err != nil {
		return err
	}

	printRecords(c.App.Writer, "Phrases", analysis.Records, cfg.Analysis.Limit)
	if analysis.Skipped > 0 {
		color.New(color.FgYellow).Fprintf(c.App.ErrWriter, "warning: %d of %d lines could not be tokenized\n",
			analysis.Skipped, analysis.Items)
	}
	return nil
}

func purgeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = true

	tk, err := relsearch.NewToolkit(cfg, relsearch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer tk.Close()

	n, err := tk.PurgeCache(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Purged %d cached responses from %s\n", n, cfg.Cache.Path)
	return nil
}

func printQueries(w io.Writer, result *core.Expansion) {
	color.New(color.Bold).Fprintf(w, "Related searches for %q (depth %d): %d\n", result.Seed, result.Depth, len(result.Queries))
	for i, q := range result.Queries {
		fmt.Fprintf(w, "%4d  %s\n", i+1, q)
	}
}

func printRecords(w io.Writer, title string, records []core.NGramRecord, limit int) {
	color.New(color.Bold).Fprintf(w, "%s: %d\n", title, len(records))
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPHRASE\tWORDS\tABSOLUTE\tWEIGHTED")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.0f\n", i+1, r.Phrase, r.Length, r.AbsoluteFrequency, r.WeightedFrequency)
	}
	tw.Flush()
}

func printClusters(w io.Writer, clusters []cluster.Cluster) {
	color.New(color.Bold).Fprintf(w, "Clusters: %d\n", len(clusters))
	leader := color.New(color.FgCyan).SprintFunc()
	for i, cl := range clusters {
		fmt.Fprintf(w, "%3d  %s (%d)\n", i+1, leader(cl.Leader), cl.Size())
		for _, m := range cl.Members[1:] {
			fmt.Fprintf(w, "       %s\n", m)
		}
	}
}

func printResults(w io.Writer, set *serp.ResultSet) {
	color.New(color.Bold).Fprintf(w, "Organic results for %q: %d of about %d\n", set.Query, len(set.Results), set.TotalResults)
	title := color.New(color.FgCyan).SprintFunc()
	link := color.New(color.FgGreen).SprintFunc()
	for _, r := range set.Results {
		fmt.Fprintf(w, "%3d  %s\n     %s\n", r.Rank, title(r.Title), link(r.Link))
	}
}

func printPartialWarning(w io.Writer, result *core.Expansion) {
	if !result.Partial() {
		return
	}
	warn := color.New(color.FgYellow)
	if result.Err != nil {
		warn.Fprintf(w, "warning: expansion stopped early (%v); results are partial\n", result.Err)
	}
	if n := len(result.Failures); n > 0 {
		warn.Fprintf(w, "warning: %d of %d suggestion calls failed; results are partial\n", n, result.Calls)
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  round %d %q: %v\n", f.Round, f.Query, f.Err)
		}
	}
}

func setupLogger(c *cli.Context) error {
	if c.Bool("no-color") {
		color.NoColor = true
	}

	level, err := charmlog.ParseLevel(strings.ToLower(c.String("log-level")))
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", c.String("log-level"))
	}

	logger := charmlog.NewWithOptions(c.App.ErrWriter, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       charmlog.TextFormatter,
	})
	slog.SetDefault(slog.New(logger))
	return nil
}

