package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/client"
	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/models"

	logging "github.com/JerraForge/hydroponic-backend/common/logger"

	"go.uber.org/zap"
)

const usage = `Usage: hydroctl [flags] <command> [args]

Commands:
  systems                                  list your systems
  create <name> [location]                 create a system
  show <system-id>                         show one system
  delete <system-id>                       delete a system and its measurements
  query <system-id> [key=value ...]        one page of measurements (start_date, end_date,
                                           show_ph, show_temperature, show_tds, filter_type,
                                           min_value, max_value, page)
  ingest <system-id> <json>                record readings: '{"ph":6.5,"temperature":21,"tds":800}' or an array
  export <system-id> <file.xlsx> [key=value ...]

Flags:
`

func main() {
	fs := flag.NewFlagSet("hydroctl", flag.ExitOnError)
	baseURL := fs.String("url", envOr("HYDROCTL_URL", "http://localhost:8080"), "hydroponic-data base URL")
	user := fs.String("user", os.Getenv("HYDROCTL_USER"), "identity sent as X-User-Id")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		if l, err := logging.NewDevelopmentLogger(); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	c := client.New(*baseURL, domain.Identity(*user), client.Options{Timeout: *timeout, RetryCount: 2}, logger)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, c, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if client.IsNotFound(err) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "systems":
		systems, err := c.ListSystems(ctx)
		if err != nil {
			return err
		}
		return printJSON(systems)

	case "create":
		if len(rest) < 1 {
			return errors.New("create needs a name")
		}
		location := ""
		if len(rest) > 1 {
			location = strings.Join(rest[1:], " ")
		}
		s, err := c.CreateSystem(ctx, rest[0], location)
		if err != nil {
			return err
		}
		return printJSON(s)

	case "show":
		if len(rest) != 1 {
			return errors.New("show needs a system id")
		}
		s, err := c.GetSystem(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(s)

	case "delete":
		if len(rest) != 1 {
			return errors.New("delete needs a system id")
		}
		if err := c.DeleteSystem(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("deleted", rest[0])
		return nil

	case "query":
		if len(rest) < 1 {
			return errors.New("query needs a system id")
		}
		params, err := parseParams(rest[1:])
		if err != nil {
			return err
		}
		page, err := c.QueryMeasurements(ctx, rest[0], params)
		if err != nil {
			return err
		}
		return printJSON(page)

	case "ingest":
		if len(rest) != 2 {
			return errors.New("ingest needs a system id and a JSON payload")
		}
		readings, err := models.ParseReadingsPayload([]byte(rest[1]))
		if err != nil {
			return err
		}
		out, err := c.IngestReadings(ctx, rest[0], readings)
		if err != nil {
			return err
		}
		return printJSON(out)

	case "export":
		if len(rest) < 2 {
			return errors.New("export needs a system id and an output file")
		}
		params, err := parseParams(rest[2:])
		if err != nil {
			return err
		}
		data, err := c.ExportMeasurements(ctx, rest[0], params)
		if err != nil {
			return err
		}
		if err := os.WriteFile(rest[1], data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rest[1], err)
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), rest[1])
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		params.Add(k, v)
	}
	return params, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
