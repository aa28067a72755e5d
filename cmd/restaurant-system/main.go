package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"restaurant-system/internal/assistant"
	"restaurant-system/internal/common/config"
	"restaurant-system/internal/common/db"
	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/common/mq"
	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/notify"
	"restaurant-system/internal/session"
	"restaurant-system/internal/tracking"
	"restaurant-system/internal/tui"
)

func main() {
	mode := flag.String("mode", "console", "console | notification-subscriber")
	cfgPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml, then deploy/config.example.yaml)")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "console":
		if err := runConsole(ctx, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "notification-subscriber":
		lg := logger.NewWithOptions("notification-subscriber", logger.Options{Level: cfg.Log.Level})
		lg.Info("service_started", map[string]any{"service": "notification-subscriber", "queue": cfg.Rabbit.Queue})
		if err := runSubscriber(ctx, cfg, lg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be console or notification-subscriber")
		os.Exit(2)
	}
}

func loadConfig(path string) (config.App, error) {
	if path == "" {
		found, err := config.FindConfig()
		if err != nil {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}

// runConsole logs to a file: stdout belongs to the terminal UI.
func runConsole(ctx context.Context, cfg config.App) error {
	f, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer f.Close()
	lg := logger.NewWithOptions("console", logger.Options{Writer: f, Level: cfg.Log.Level})
	lg.Info("service_started", map[string]any{"service": "console", "session_backend": cfg.Session.Backend})

	store, closeStore, err := openStore(ctx, cfg, lg)
	if err != nil {
		lg.Error("session_store_failed", err, nil)
		return err
	}
	defer closeStore()

	sess, err := session.Open(ctx, store, lg.Named("session"))
	if err != nil {
		return err
	}
	coord := coordinator.New(sess,
		coordinator.WithLogger(lg.Named("coordinator")),
		coordinator.WithTaxRate(cfg.Restaurant.TaxRate),
		coordinator.WithTableRelease(cfg.Restaurant.ReleaseTablesOnClose),
		coordinator.WithObservers(coordinator.NewLogObserver(lg.Named("events"))),
	)
	seed := coordinator.DefaultSeed(time.Now())
	if !cfg.Restaurant.Seed {
		seed = coordinator.Seed{Tables: seed.Tables}
	}
	if err := coord.Load(seed); err != nil {
		return err
	}

	if cfg.Notifications.Enabled {
		client, err := mq.Dial(cfg.Rabbit)
		if err == nil {
			err = client.DeclareFanout(cfg.Rabbit.Exchange, "")
		}
		if err != nil {
			// the floor keeps working without the broker
			lg.Error("notifications_disabled", err, map[string]any{"host": cfg.Rabbit.Host})
			client.Close()
		} else {
			defer client.Close()
			pub := notify.NewPublisher(client, cfg.Rabbit.Exchange, cfg.Notifications.Buffer, lg.Named("notify"))
			coord.Subscribe(pub)
			go pub.Run(ctx)
		}
	}

	if cfg.Tracking.Enabled {
		go func() {
			if err := tracking.Run(ctx, coord, cfg.Tracking.Port, lg.Named("tracking")); err != nil {
				lg.Error("tracking_failed", err, map[string]any{"port": cfg.Tracking.Port})
			}
		}()
	}

	dir, err := session.NewDirectory(cfg.Accounts)
	if err != nil {
		return err
	}
	ai := assistant.New(assistant.NewGeminiClient(cfg.Assistant), cfg.Assistant.APIKey,
		assistant.WithRestaurant(cfg.Restaurant.Name),
		assistant.WithTemperature(*cfg.Assistant.Temperature),
		assistant.WithTimeout(cfg.Assistant.Timeout),
		assistant.WithLogger(lg.Named("assistant")),
	)

	app := tui.NewApp(coord, dir,
		tui.WithTitle(cfg.Restaurant.Name),
		tui.WithAssistant(ai),
		tui.WithLogger(lg.Named("tui")),
	)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	lg.Info("service_stopped", map[string]any{"service": "console"})
	return nil
}

func openStore(ctx context.Context, cfg config.App, lg *logger.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionMemory:
		return session.NewMemoryStore(), func() {}, nil
	case config.SessionPostgres:
		conn, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := session.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Name})
		return session.NewPostgresStore(conn), conn.Close, nil
	default:
		return session.NewFileStore(cfg.Session.Path), func() {}, nil
	}
}

func runSubscriber(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	client, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.DeclareFanout(cfg.Rabbit.Exchange, cfg.Rabbit.Queue); err != nil {
		return err
	}
	return notify.NewSubscriber(client, cfg.Rabbit.Queue, lg, nil).Run(ctx)
}
