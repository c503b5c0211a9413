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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/haystack"
	"github.com/poiesic/haystack/config"
	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/indexing"
	"github.com/poiesic/haystack/metrics"
	"github.com/poiesic/haystack/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "haystack",
		Usage: "Full-text index and search over a local document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides the config file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Store and index documents read as JSON, one object per document",
				ArgsUsage: "[file]",
				Action:    indexCommand,
			},
			{
				Name:      "remove",
				Usage:     "Remove documents and their postings",
				ArgsUsage: "id...",
				Action:    removeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Model type of the documents",
						Required: true,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the postings of every stored document",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of postings committed per transaction",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of analysis workers (0 picks from the CPU count)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum commit attempts for a failing batch",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 100 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report progress on stderr",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "[terms...]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "all",
						Usage: "Match documents containing every term",
					},
					&cli.StringFlag{
						Name:  "any",
						Usage: "Match documents containing any term",
					},
					&cli.StringFlag{
						Name:  "in",
						Usage: "Match documents containing any of the listed values",
					},
					&cli.StringSliceFlag{
						Name:  "facet",
						Usage: "Require a facet element with key=value (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Restrict results to model types (repeatable)",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Hits per page (0 uses the configured page size)",
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Print query metrics after the results",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show document and posting counts",
				Action: statsCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.String("log-format"))
	}
	slog.SetDefault(slog.New(handler))

	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Path = db
		cfg.InMemory = false
	}
	cfg.LogLevel = c.String("log-level")
	cfg.LogFormat = c.String("log-format")
	return cfg, nil
}

func openIndex(c *cli.Context, opts ...haystack.Option) (*haystack.Index, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return haystack.Open(append([]haystack.Option{haystack.WithConfig(cfg)}, opts...)...)
}

func indexCommand(c *cli.Context) error {
	var in io.Reader = c.App.Reader
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}
	if in == nil {
		in = os.Stdin
	}

	docs, err := readDocuments(in)
	if err != nil {
		return err
	}

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Put(c.Context, docs...); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "indexed %d documents\n", len(docs))
	return nil
}

// readDocuments decodes a stream of JSON objects.
func readDocuments(r io.Reader) ([]*core.Document, error) {
	dec := json.NewDecoder(r)
	var docs []*core.Document
	for {
		var doc core.Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, &doc)
	}
}

func removeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one id is required")
	}

	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	modelType := c.String("type")
	refs := make([]core.IdentityHit, c.NArg())
	for i, id := range c.Args().Slice() {
		refs[i] = core.IdentityHit{ModelType: modelType, ModelID: id}
	}
	if err := idx.Delete(c.Context, refs...); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "removed %d documents\n", len(refs))
	return nil
}

func reindexCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	opts := []indexing.Option{
		indexing.WithBatchSize(c.Int("batch-size")),
		indexing.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	}
	if n := c.Int("pool-size"); n > 0 {
		opts = append(opts, indexing.WithPoolSize(n))
	}
	if c.Bool("progress") {
		opts = append(opts, indexing.WithProgress(c.App.ErrWriter))
	}

	report, err := idx.ReindexAll(c.Context, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "indexed %d documents in %s\n", report.Indexed, report.Elapsed.Round(time.Millisecond))
	for _, failure := range report.Failures {
		fmt.Fprintf(c.App.Writer, "failed %s/%s: %v\n", failure.Ref.ModelType, failure.Ref.ModelID, failure.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d documents failed to index", len(report.Failures))
	}
	return nil
}

func parseFacets(values []string) (core.Facet, error) {
	if len(values) == 0 {
		return nil, nil
	}
	facet := make(core.Facet, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid facet %q: must be key=value", v)
		}
		facet[key] = value
	}
	return facet, nil
}

func searchCommand(c *cli.Context) error {
	facets, err := parseFacets(c.StringSlice("facet"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	monitor, err := metrics.NewMonitor(reg)
	if err != nil {
		return err
	}

	idx, err := openIndex(c, haystack.WithMonitor(monitor))
	if err != nil {
		return err
	}
	defer idx.Close()

	results, err := idx.Search(c.Context, haystack.Request{
		Terms: c.Args().Slice(),
		Options: search.Options{
			All:    c.String("all"),
			Any:    c.String("any"),
			In:     c.String("in"),
			Facets: facets,
			Types:  c.StringSlice("type"),
		},
		Page: c.Int("page"),
		Size: c.Int("size"),
	})
	if err != nil {
		return err
	}

	w := c.App.Writer
	page := results.Page
	fmt.Fprintf(w, "query %s: %q (%s, %d tokens)\n", results.Query.ID, results.Query.Text, results.Query.Operator, len(results.Query.Tokens))
	fmt.Fprintf(w, "page %d of %d, %d hits\n", page.CurrentPage, page.TotalPages, page.TotalCount)
	for _, hit := range page.Items {
		title := ""
		if doc, ok := hit.Record().(*core.Document); ok {
			title = doc.Title
		}
		fmt.Fprintf(w, "%s/%s\t%s\n", hit.ModelType(), hit.ModelID(), title)
	}

	if c.Bool("metrics") {
		return printMetrics(w, reg)
	}
	return nil
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			var labels []string
			for _, pair := range m.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			slices.Sort(labels)
			name := family.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s_count %d\n", name, m.GetHistogram().GetSampleCount())
			}
		}
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	idx, err := openIndex(c)
	if err != nil {
		return err
	}
	defer idx.Close()

	stats, err := idx.Stats(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "documents: %d\npostings: %d\n", stats.Documents, stats.CorpusTotal)
	return nil
}
