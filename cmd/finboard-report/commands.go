package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	appcli "finboard/internal/cli"
	"finboard/internal/config"
	applog "finboard/internal/log"
	"finboard/internal/report"
	"finboard/internal/services"
	"finboard/internal/source"
	"finboard/internal/source/gcs"
	"finboard/internal/storage"
)

type env struct {
	cfg    *config.Config
	logger *applog.Logger
	out    io.Writer
	open   func(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error)
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:   "finboard-report",
		Usage:  "Render dashboard reports and manage snapshots from the command line",
		Writer: e.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "override DATA_BACKEND (" + strings.Join(backend.GetBackendTypeStrings(), ", ") + ")",
			},
		},
		Before: func(c *cli.Context) error {
			if b := c.String("backend"); b != "" {
				if !backend.BackendType(b).IsValid() {
					return fmt.Errorf("unknown backend %q", b)
				}
				e.cfg.DataBackend = b
			}
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(e),
			optionsCommand(e),
			snapshotCommand(e),
			publishCommand(e),
		},
	}
}

func criteriaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "first day included (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Usage: "last day included (YYYY-MM-DD)"},
		&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "category to include, repeatable (default: all)"},
		&cli.BoolFlag{Name: "no-categories", Usage: "select no category"},
	}
}

func reportCommand(e *env) *cli.Command {
	flags := append(criteriaFlags(),
		&cli.IntFlag{Name: "horizon", Usage: "months to forecast", Value: e.cfg.ForecastHorizon},
		&cli.IntFlag{Name: "top-n", Usage: "largest transactions to list", Value: e.cfg.TopN},
		&cli.StringFlag{Name: "series", Usage: "print only the daily, weekly or monthly series"},
		&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
	)
	return &cli.Command{
		Name:  "report",
		Usage: "Run the dashboard pipeline once and print the result",
		Flags: flags,
		Action: func(c *cli.Context) error {
			req, err := requestFromFlags(c)
			if err != nil {
				return err
			}
			req.Horizon = c.Int("horizon")
			req.TopN = c.Int("top-n")

			return e.withBackend(c.Context, func(store *backend.BackendResult) error {
				dashboard := services.NewDashboardService(store.Fetcher, appcli.DashboardConfig(e.cfg), e.logger)
				rep, err := dashboard.Run(c.Context, req)
				if err != nil {
					return err
				}

				switch series := c.String("series"); series {
				case "":
				case "daily":
					return report.WriteSeries(e.out, series, rep.Daily)
				case "weekly":
					return report.WriteSeries(e.out, series, rep.Weekly)
				case "monthly":
					return report.WriteSeries(e.out, series, rep.Monthly)
				default:
					return fmt.Errorf("unknown series %q: want daily, weekly or monthly", series)
				}

				if c.Bool("json") {
					enc := json.NewEncoder(e.out)
					enc.SetIndent("", "  ")
					return enc.Encode(rep)
				}
				return report.WriteText(e.out, rep)
			})
		},
	}
}

func optionsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "options",
		Usage: "Print the observed date range and categories",
		Action: func(c *cli.Context) error {
			return e.withBackend(c.Context, func(store *backend.BackendResult) error {
				dashboard := services.NewDashboardService(store.Fetcher, appcli.DashboardConfig(e.cfg), e.logger)
				opts, err := dashboard.Options(c.Context)
				if err != nil {
					return err
				}
				if !opts.HasData {
					_, err := fmt.Fprintln(e.out, "No transactions")
					return err
				}

				tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "First\t%s\n", opts.First.Format(time.DateOnly))
				fmt.Fprintf(tw, "Last\t%s\n", opts.Last.Format(time.DateOnly))
				for _, cat := range opts.Categories {
					fmt.Fprintf(tw, "Category\t%s\t(%s)\n", cat, report.CategoryLabel(cat))
				}
				return tw.Flush()
			})
		},
	}
}

func snapshotCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Copy the configured source into a SQLite database or a gs:// object",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "SQLite path or gs://bucket/object", Value: e.cfg.SQLiteDBPath},
			&cli.IntFlag{Name: "keep", Usage: "snapshots to keep in SQLite (0 keeps all)", Value: e.cfg.SnapshotKeep},
		},
		Action: func(c *cli.Context) error {
			to, closeTo, err := openSnapshotTarget(c.Context, c.String("to"))
			if err != nil {
				return err
			}
			defer closeTo()

			return e.withBackend(c.Context, func(store *backend.BackendResult) error {
				svc := services.NewSnapshotService(store.Fetcher, to, services.SnapshotConfig{
					SourceName: e.cfg.DataBackend,
					Keep:       c.Int("keep"),
				}, e.logger)
				res, err := svc.Copy(c.Context)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "Snapshot %s: %d rows, %d pruned\n", res.ID, res.Rows, res.Pruned)
				return err
			})
		},
	}
}

func publishCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Queue a dashboard refresh request for finboard-worker",
		Flags: criteriaFlags(),
		Action: func(c *cli.Context) error {
			if e.cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not set")
			}
			if _, err := requestFromFlags(c); err != nil {
				return err
			}
			client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPRequestQueue, e.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			msg := amqp.NewRefreshRequest(c.String("start"), c.String("end"), categoriesFromFlags(c))
			if err := client.PublishRefreshRequest(c.Context, msg); err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.out, "Published refresh request %s\n", msg.RequestID)
			return err
		},
	}
}

func (e *env) withBackend(ctx context.Context, fn func(*backend.BackendResult) error) error {
	store, err := e.open(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			e.logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	}()
	return fn(store)
}

// openSnapshotTarget opens a gs:// object or a SQLite database.
func openSnapshotTarget(ctx context.Context, to string) (source.SnapshotWriter, func() error, error) {
	if strings.HasPrefix(to, "gs://") {
		bucket, object, err := gcs.ParseURI(to)
		if err != nil {
			return nil, nil, err
		}
		obj, err := gcs.New(ctx, bucket, object)
		if err != nil {
			return nil, nil, err
		}
		return obj, obj.Close, nil
	}
	if to == "" {
		return nil, nil, fmt.Errorf("snapshot destination is empty")
	}
	repo, err := storage.NewSQLiteRepository(to)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func requestFromFlags(c *cli.Context) (services.Request, error) {
	var req services.Request
	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"start", &req.Start}, {"end", &req.End}} {
		v := c.String(f.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return services.Request{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", f.name, v)
		}
		*f.dst = t
	}
	req.Categories = categoriesFromFlags(c)
	return req, nil
}

// categoriesFromFlags returns nil for every category and an empty slice
// for none.
func categoriesFromFlags(c *cli.Context) []string {
	if c.Bool("no-categories") {
		return []string{}
	}
	if !c.IsSet("category") {
		return nil
	}
	return c.StringSlice("category")
}
