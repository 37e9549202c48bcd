package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/patentsearch"
	"github.com/letmevibethatforyou/patentsearch/inmemory"
	"github.com/letmevibethatforyou/patentsearch/uspto"
	"github.com/urfave/cli/v2"
)

const defaultTimeout = 60 * time.Second

// searchFlags are shared by the search and export commands; both build the
// same request, export just forces its own page size.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Search type (simple, boolean, wildcard, field_specific, range, filtered, faceted)",
			Value:   string(patentsearch.SearchSimple),
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Query term; positional arg is a fallback",
		},
		&cli.StringSliceFlag{
			Name:  "term",
			Usage: "Boolean term in field=value or op:field=value format; repeatable",
		},
		&cli.StringFlag{
			Name:  "field",
			Usage: "Target field for wildcard, field_specific, range and filtered searches",
		},
		&cli.StringFlag{
			Name:  "value",
			Usage: "Target value for wildcard, field_specific and filtered searches",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "Lower bound for range searches (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Upper bound for range searches (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "date-from",
			Usage: "Filing date window lower bound (YYYY-MM-DD); applies to every search type",
		},
		&cli.StringFlag{
			Name:  "date-to",
			Usage: "Filing date window upper bound (YYYY-MM-DD); applies to every search type",
		},
		&cli.StringSliceFlag{
			Name:  "facet",
			Usage: "Facet field for faceted searches; repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "filter",
			Usage: "Extra filter in name=value format; repeatable",
		},
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "1-based page number",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of results per page",
			Value:   25,
		},
		&cli.StringFlag{
			Name:  "sort-field",
			Usage: "Field to sort by",
		},
		&cli.StringFlag{
			Name:  "sort-order",
			Usage: "Sort direction (asc or desc)",
		},
	}
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "patents",
		Usage: "Search USPTO patent application records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "uspto-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing the USPTO API key",
				EnvVars: []string{"USPTO_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "fixture",
				Usage:   "Path to a JSON-lines fixture file (see the generator command); searches run in memory instead of against the USPTO API",
				EnvVars: []string{"PATENTS_FIXTURE"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the API request",
				Value: defaultTimeout,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Execute a search and print results as JSON",
				Flags:  searchFlags(),
				Action: searchAction,
			},
			{
				Name:  "export",
				Usage: "Execute a search and write the results to a CSV file",
				Flags: append(searchFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path; defaults to patent_search_results_<timestamp>.csv",
					},
				),
				Action: exportAction,
			},
			{
				Name:   "test-connection",
				Usage:  "Probe the USPTO API and report connectivity",
				Action: testConnectionAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// newRunner wires the searcher from the global flags: a fixture-backed
// in-memory searcher when --fixture is given, the USPTO API otherwise.
func newRunner(c *cli.Context) (*patentsearch.Runner, error) {
	ctx := c.Context

	if fixture := strings.TrimSpace(c.String("fixture")); fixture != "" {
		slog.InfoContext(ctx, "using in-memory searcher", "fixture", fixture)
		searcher, err := loadFixture(fixture)
		if err != nil {
			return nil, err
		}
		return patentsearch.NewRunner(searcher), nil
	}

	secretArn := strings.TrimSpace(c.String("uspto-secret-arn"))

	var fetchSecrets uspto.FetchSecrets
	if secretArn != "" {
		slog.InfoContext(ctx, "using AWS Secrets Manager for USPTO credentials", "secret_arn", secretArn)
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		secretsClient := secretsmanager.NewFromConfig(cfg)
		fetchSecrets = uspto.AWSSecretsFromARN(ctx, secretsClient, secretArn)
	} else {
		fetchSecrets = uspto.EnvSecrets()
	}

	client := uspto.NewClient(fetchSecrets)
	return patentsearch.NewRunner(uspto.NewSearcher(client)), nil
}

// loadFixture builds an in-memory searcher from a JSON-lines file of
// {"id": ..., "record": ...} objects, as emitted by the generator command.
func loadFixture(path string) (*inmemory.Searcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	searcher := inmemory.New()
	dec := json.NewDecoder(f)
	for n := 1; ; n++ {
		var line struct {
			ID     string              `json:"id"`
			Record patentsearch.Record `json:"record"`
		}
		if err := dec.Decode(&line); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse fixture line %d: %w", n, err)
		}
		if line.ID == "" {
			line.ID = fmt.Sprintf("record-%d", n)
		}
		if err := searcher.AddRecord(line.ID, line.Record); err != nil {
			return nil, fmt.Errorf("failed to load fixture line %d: %w", n, err)
		}
	}

	slog.Info("loaded fixture", "path", path, "records", searcher.Size())
	return searcher, nil
}

// parseBooleanTerms parses --term flags. A term is field=value, optionally
// prefixed with the joining operator as op:field=value.
func parseBooleanTerms(raw []string) ([]patentsearch.BooleanTerm, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	terms := make([]patentsearch.BooleanTerm, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("term cannot be empty")
		}

		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("term must be in field=value or op:field=value format: %q", item)
		}

		left := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var op string
		if lp := strings.SplitN(left, ":", 2); len(lp) == 2 {
			op = strings.TrimSpace(lp[0])
			left = strings.TrimSpace(lp[1])
		}

		if left == "" || value == "" {
			return nil, fmt.Errorf("term field and value must be non-empty: %q", item)
		}

		terms = append(terms, patentsearch.BooleanTerm{Field: left, Value: value, Operator: op})
	}

	return terms, nil
}

// parseFilters parses --filter flags in name=value format.
func parseFilters(raw []string) ([]patentsearch.Filter, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	filters := make([]patentsearch.Filter, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("filter cannot be empty")
		}

		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("filter must be in name=value format: %q", item)
		}

		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if name == "" || value == "" {
			return nil, fmt.Errorf("filter name and value must be non-empty: %q", item)
		}

		filters = append(filters, patentsearch.Filter{Name: name, Value: []string{value}})
	}

	return filters, nil
}

func requestFromFlags(c *cli.Context) (*patentsearch.SearchRequest, error) {
	term := strings.TrimSpace(c.String("query"))
	if term == "" && c.NArg() > 0 {
		term = strings.TrimSpace(c.Args().First())
	}

	terms, err := parseBooleanTerms(c.StringSlice("term"))
	if err != nil {
		return nil, fmt.Errorf("invalid term: %w", err)
	}

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	return &patentsearch.SearchRequest{
		Type: patentsearch.SearchType(c.String("type")),
		Query: patentsearch.QueryParams{
			Term:      term,
			Terms:     terms,
			Field:     c.String("field"),
			Value:     c.String("value"),
			ValueFrom: c.String("from"),
			ValueTo:   c.String("to"),
			Facets:    c.StringSlice("facet"),
			DateFrom:  c.String("date-from"),
			DateTo:    c.String("date-to"),
		},
		Page:      c.Int("page"),
		Limit:     c.Int("limit"),
		SortField: c.String("sort-field"),
		SortOrder: c.String("sort-order"),
		Filters:   filters,
	}, nil
}

func searchAction(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "executing search",
		"type", string(req.Type),
		"query", req.Query.Term,
		"term_count", len(req.Query.Terms),
		"page", req.Page,
		"limit", req.Limit,
	)

	result := runner.Run(ctx, patentsearch.OpSearch, &patentsearch.OperationParams{Search: req})
	if !result.Success {
		return fmt.Errorf("search failed: %s", result.Error)
	}

	return printResults(result.Data)
}

func exportAction(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}

	result := runner.Run(ctx, patentsearch.OpExportCSV, &patentsearch.OperationParams{Search: req})
	if !result.Success {
		return fmt.Errorf("export failed: %s", result.Error)
	}

	output := strings.TrimSpace(c.String("output"))
	if output == "" {
		output = fmt.Sprintf("patent_search_results_%s.csv", time.Now().Format("20060102_150405"))
	}

	if err := os.WriteFile(output, []byte(result.CSVData), 0o644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}

	slog.InfoContext(ctx, "export complete", "file", output, "bytes", len(result.CSVData))
	fmt.Println(output)
	return nil
}

func testConnectionAction(c *cli.Context) error {
	runner, err := newRunner(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	result := runner.Run(ctx, patentsearch.OpTestConnection, nil)
	if !result.Success {
		return fmt.Errorf("connection test failed: %s", result.Error)
	}

	fmt.Println(result.Message)
	return nil
}

func printResults(res *patentsearch.Results) error {
	if res == nil {
		fmt.Println("{}")
		return nil
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
