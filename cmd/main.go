package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/angeloszaimis/service-a/config"
	"github.com/angeloszaimis/service-a/internal/circuitbreaker"
	"github.com/angeloszaimis/service-a/internal/handler"
	"github.com/angeloszaimis/service-a/internal/httpserver"
	"github.com/angeloszaimis/service-a/internal/metrics"
	"github.com/angeloszaimis/service-a/internal/peer"
	"github.com/angeloszaimis/service-a/pkg/logger"
)

const componentName = "service-a"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("service-a exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  componentName,
		Usage: "greets, reports health and calls Service B",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (defaults to ./config/config.yaml or ./config.yaml when present)",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, logger.Identity{
		Component: componentName,
		Cluster:   cfg.Cluster.Name,
		Pod:       cfg.Pod.Name,
	})

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	client := newPeerClient(cfg, log, m)
	serviceHandler := handler.NewServiceHandler(log, client, cfg.Cluster.Name, cfg.Pod.Name)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(serviceHandler, m, log))
	if err != nil {
		log.Error(fmt.Sprintf("Failed to create server: %v", err))
		return err
	}

	if err := srv.Listen(); err != nil {
		log.Error(fmt.Sprintf("Error starting Service A: %v", err))
		return err
	}

	log.Info(fmt.Sprintf("Service A listening on %s, calling Service B at %s", srv.Addr(), client.URL()))

	stop := context.AfterFunc(ctx, func() {
		log.Info("Shutting down gracefully...")
	})
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error(fmt.Sprintf("Service A stopped with error: %v", err))
		return err
	}

	return nil
}

func newPeerClient(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) *peer.Client {
	breaker := circuitbreaker.NewCircuitBreaker(cfg.ServiceB.BreakerThreshold, cfg.BreakerReset(),
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			log.Warn(fmt.Sprintf("Service B circuit breaker changed from %s to %s", from, to))
			m.SetCircuitState(int(to))
		}),
	)

	return peer.New(cfg.ServiceB.URL,
		peer.WithHTTPClient(&http.Client{Transport: newPeerTransport()}),
		peer.WithTimeout(cfg.PeerTimeout()),
		peer.WithBreaker(breaker),
		peer.WithRecorder(m),
	)
}

// newPeerTransport keeps a warm pool of connections to the single peer.
func newPeerTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.IdleConnTimeout = 90 * time.Second
	return t
}
