package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/urfave/cli/v2"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/tmonitor"
	"github.com/itqwq/tmonitor/download"
	"github.com/itqwq/tmonitor/exchange"
	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/service"
	"github.com/itqwq/tmonitor/storage"
	"github.com/itqwq/tmonitor/tools/log"
)

func main() {
	app := &cli.App{
		Name:     "tmonitor",
		HelpName: "tmonitor",
		Usage:    "MACD/KDJ divergence monitor for A-share bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"TMONITOR_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := log.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			log.Setup(level)
			return nil
		},
		Commands: []*cli.Command{
			monitorCommand(),
			replayCommand(),
			downloadCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func strategyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "symbol",
			Aliases:  []string{"s"},
			Usage:    "eg. 600869",
			Required: true,
			EnvVars:  []string{"TMONITOR_SYMBOLS"},
		},
		&cli.StringSliceFlag{
			Name:  "name",
			Usage: "display name, eg. 600869=远东股份",
		},
		&cli.StringFlag{
			Name:    "timeframe",
			Aliases: []string{"t"},
			Usage:   "eg. 1m, 5m, 1d",
			Value:   "1m",
		},
		&cli.BoolFlag{
			Name:    "diag",
			Usage:   "append confirmation path to every signal",
			EnvVars: []string{"TMONITOR_DIAG"},
		},
		&cli.BoolFlag{
			Name:  "no-hints",
			Usage: "disable weak hints",
		},
		&cli.BoolFlag{
			Name:  "no-score",
			Usage: "disable position score",
		},
	}
}

func config(c *cli.Context) model.Config {
	cfg := model.DefaultConfig()
	cfg.Timeframe = c.String("timeframe")
	cfg.Diagnostics = c.Bool("diag")
	cfg.EnableWeakHints = !c.Bool("no-hints")
	cfg.EnablePositionScore = !c.Bool("no-score")
	return cfg
}

func names(c *cli.Context) map[string]string {
	result := make(map[string]string)
	for _, value := range c.StringSlice("name") {
		symbol, name, ok := strings.Cut(value, "=")
		if ok {
			result[strings.TrimSpace(symbol)] = strings.TrimSpace(name)
		}
	}
	return result
}

func feeder(source, timeframe string) (service.Feeder, error) {
	switch source {
	case "sina":
		return exchange.NewSina(timeframe)
	case "eastmoney":
		return exchange.NewEastMoney(timeframe)
	case "auto":
		sina, err := exchange.NewSina(timeframe)
		if err != nil {
			return nil, err
		}
		eastMoney, err := exchange.NewEastMoney(timeframe)
		if err != nil {
			return nil, err
		}
		return exchange.NewFallback(sina, eastMoney), nil
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

func openStorage(path string) (storage.Storage, error) {
	if strings.HasSuffix(path, ".sqlite") {
		return storage.FromSQL(sqlite.Open(path))
	}
	return storage.FromFile(path)
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "source",
		Usage: "sina, eastmoney or auto",
		Value: "auto",
	}
}

func monitorCommand() *cli.Command {
	flags := append(strategyFlags(),
		sourceFlag(),
		&cli.StringFlag{
			Name:  "poll",
			Usage: "poll interval, eg. 30s",
			Value: "1m",
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "signal journal, *.sqlite uses sqlite, otherwise buntdb",
			Value:   "tmonitor.db",
			EnvVars: []string{"TMONITOR_DB"},
		},
		&cli.StringFlag{
			Name:    "feishu-webhook",
			EnvVars: []string{"TMONITOR_FEISHU_WEBHOOK"},
		},
		&cli.StringFlag{
			Name:    "telegram-token",
			EnvVars: []string{"TMONITOR_TELEGRAM_TOKEN"},
		},
		&cli.IntSliceFlag{
			Name:    "telegram-user",
			EnvVars: []string{"TMONITOR_TELEGRAM_USERS"},
		},
	)

	return &cli.Command{
		Name:     "monitor",
		HelpName: "monitor",
		Usage:    "Poll live bars and push divergence signals",
		Flags:    flags,
		Action: func(c *cli.Context) error {
			cfg := config(c)
			poll, err := str2duration.ParseDuration(c.String("poll"))
			if err != nil {
				return err
			}

			source, err := feeder(c.String("source"), cfg.Timeframe)
			if err != nil {
				return err
			}

			repo, err := openStorage(c.String("db"))
			if err != nil {
				return err
			}

			settings := model.Settings{
				Symbols: c.StringSlice("symbol"),
				Feishu: model.FeishuSettings{
					Enabled:    true,
					WebhookURL: c.String("feishu-webhook"),
				},
				Telegram: model.TelegramSettings{
					Enabled: c.String("telegram-token") != "",
					Token:   c.String("telegram-token"),
					Users:   c.IntSlice("telegram-user"),
				},
			}

			manager, err := tmonitor.NewManager(settings, source,
				tmonitor.WithConfig(cfg),
				tmonitor.WithPollInterval(poll),
				tmonitor.WithStorage(repo),
				tmonitor.WithNames(names(c)),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return manager.Run(ctx)
		},
	}
}

func replayCommand() *cli.Command {
	flags := append(strategyFlags(),
		&cli.StringSliceFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "csv file per symbol, same order as --symbol",
			Required: true,
		},
		&cli.TimestampFlag{
			Name:     "start",
			Usage:    "eg. 2025-08-01",
			Layout:   "2006-01-02",
			Timezone: exchange.Location,
		},
		&cli.TimestampFlag{
			Name:     "end",
			Usage:    "eg. 2025-08-31",
			Layout:   "2006-01-02",
			Timezone: exchange.Location,
		},
		&cli.IntFlag{
			Name:  "horizon",
			Usage: "bars after a signal used to measure its return",
			Value: 30,
		},
	)

	return &cli.Command{
		Name:     "replay",
		HelpName: "replay",
		Usage:    "Run the monitor over csv bars",
		Flags:    flags,
		Action: func(c *cli.Context) error {
			symbols, files := c.StringSlice("symbol"), c.StringSlice("file")
			if len(symbols) != len(files) {
				return fmt.Errorf("got %d symbols and %d files", len(symbols), len(files))
			}

			feeds := make([]exchange.SymbolFeed, 0, len(symbols))
			for i := range symbols {
				feeds = append(feeds, exchange.SymbolFeed{Symbol: symbols[i], File: files[i]})
			}
			csvFeed, err := exchange.NewCSVFeed(feeds...)
			if err != nil {
				return err
			}

			start, end := time.Time{}, time.Now().In(exchange.Location)
			if t := c.Timestamp("start"); t != nil {
				start = *t
			}
			if t := c.Timestamp("end"); t != nil {
				end = t.AddDate(0, 0, 1).Add(-time.Second)
			}

			manager, err := tmonitor.NewManager(model.Settings{Symbols: symbols}, csvFeed,
				tmonitor.WithConfig(config(c)),
				tmonitor.WithReplay(start, end),
				tmonitor.WithProgress(),
				tmonitor.WithNames(names(c)),
			)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := manager.Run(ctx); err != nil {
				return err
			}
			return manager.Summary(ctx, os.Stdout, c.Int("horizon"))
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:     "download",
		HelpName: "download",
		Usage:    "Download recent bars to csv",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "eg. 600869",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "eg. 3 (default 5 days)",
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "eg. 2025-08-01",
				Layout:   "2006-01-02",
				Timezone: exchange.Location,
			},
			&cli.TimestampFlag{
				Name:     "end",
				Usage:    "eg. 2025-08-31",
				Layout:   "2006-01-02",
				Timezone: exchange.Location,
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "eg. 1m",
				Value:   "1m",
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "eg. ./600869.csv",
				Required: true,
			},
			sourceFlag(),
		},
		Action: func(c *cli.Context) error {
			source, err := feeder(c.String("source"), c.String("timeframe"))
			if err != nil {
				return err
			}

			var options []download.Option
			if days := c.Int("days"); days > 0 {
				options = append(options, download.WithDays(days))
			}

			start := c.Timestamp("start")
			end := c.Timestamp("end")
			if start != nil && end != nil && !start.IsZero() && !end.IsZero() {
				options = append(options, download.WithInterval(*start, *end))
			} else if start != nil || end != nil {
				return fmt.Errorf("START and END must be informed together")
			}

			return download.NewDownloader(source).Download(c.Context, c.String("symbol"),
				c.String("timeframe"), c.String("output"), options...)
		},
	}
}
