package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/cache"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/config"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/controller"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns/dnsmadeeasy"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/ipsource"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/notify"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/status"
)

var Version = "dev"

func main() {
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, cfgErr := config.Load()
	if cfg != nil && cfg.Debug {
		opts.Development = true
	}
	zapOpts := []zap.Opts{zap.UseFlagOptions(&opts)}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		zapOpts = append(zapOpts, zap.ConsoleEncoder())
	}
	ctrl.SetLogger(zap.New(zapOpts...))

	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", cfgErr)
		os.Exit(1)
	}

	if err := run(ctrl.SetupSignalHandler(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := ctrl.Log.WithName("setup")

	log.Info("starting yk-ddns-updater", "version", Version)
	log.Info("loaded config",
		"zoneID", cfg.ZoneID,
		"records", cfg.Records,
		"ipSource", cfg.IPSourceURL,
		"interval", cfg.Interval.String(),
		"ttl", cfg.TTL,
		"cache", cfg.CachePath,
		"notify", cfg.Notify.Enabled,
	)

	var statusServer *status.Server
	if cfg.StatusAddr != "" {
		statusServer = status.New(ctrl.Log.WithName("status"), cfg.StatusAddr)
		statusServer.Start(ctx)
	}

	provider, err := dnsmadeeasy.New(ctrl.Log.WithName("dnsmadeeasy"), dnsmadeeasy.Options{
		BaseURL:   cfg.APIURL,
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		UserAgent: "yk-ddns-updater/" + Version,
		Timeout:   cfg.HTTPTimeout,
	})
	if err != nil {
		return fmt.Errorf("unable to create DNS provider: %w", err)
	}

	source, err := ipsource.New(cfg.IPSourceURL, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("unable to create IP source: %w", err)
	}

	var store cache.Store
	if cfg.CachePath == "" {
		log.Info("no cache path set, last IP is kept in memory only")
		store = cache.NewMemory()
	} else {
		store = cache.NewFile(cfg.CachePath)
	}

	reconciler := &controller.Reconciler{
		Source:   source,
		Cache:    store,
		DNS:      provider,
		SiteName: cfg.Notify.SiteName,
		Log:      ctrl.Log.WithName("reconciler"),
	}
	if cfg.Notify.Enabled {
		tg, err := notify.NewTelegram(ctrl.Log.WithName("telegram"), notify.TelegramOptions{
			Token:   cfg.Notify.Token,
			ChatID:  cfg.Notify.ChatID,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return fmt.Errorf("unable to create notifier: %w", err)
		}
		reconciler.Notifier = tg
	}

	zone, err := dns.Resolve(ctx, ctrl.Log.WithName("resolver"), provider, cfg.ZoneID, cfg.Records, cfg.TTL)
	if err != nil {
		return fmt.Errorf("unable to resolve records: %w", err)
	}
	reconciler.Zone = zone
	if statusServer != nil {
		statusServer.MarkReady()
	}

	reconciler.Run(ctx, controller.IntervalScheduler{Interval: cfg.Interval})
	return nil
}
