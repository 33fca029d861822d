package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/dmitrymomot/speakerhub"
	"github.com/dmitrymomot/speakerhub/handlers"
	"github.com/dmitrymomot/speakerhub/internal/config"
	"github.com/dmitrymomot/speakerhub/middlewares"
	"github.com/dmitrymomot/speakerhub/pkg/cache"
	"github.com/dmitrymomot/speakerhub/pkg/jwt"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/redis"
	"github.com/dmitrymomot/speakerhub/pkg/users"
	"github.com/dmitrymomot/speakerhub/pkg/vendor"
)

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(
		logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format},
		logger.SentryConfig{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			MinLevel:    slog.LevelError,
		},
		middlewares.RequestIDExtractor(),
		middlewares.UserExtractor(),
	).With("service", cfg.App.Name)

	directory, err := users.New(accounts(cfg.SystemAuth.Users))
	if err != nil {
		return fmt.Errorf("system users: %w", err)
	}

	tokens, err := jwt.New(cfg.JWT.SecretKey,
		jwt.WithIssuer(cfg.App.Name),
		jwt.WithAccessTTL(cfg.JWT.AccessTTL()),
		jwt.WithRefreshTTL(cfg.JWT.RefreshTTL()),
		jwt.WithRefreshThreshold(cfg.JWT.RefreshThreshold()),
	)
	if err != nil {
		return err
	}

	var (
		runOpts     = []speakerhub.RunOption{speakerhub.Logger(log)}
		healthOpts  = []speakerhub.HealthOption{speakerhub.WithServiceInfo(cfg.App.Name, cfg.App.Version)}
		providerOpt = []vendor.Option{
			vendor.WithLogger(log.With("component", "vendor")),
			vendor.WithTokenFile(cfg.Vendor.TokenFile),
			vendor.WithDeviceCacheTTL(cfg.Vendor.DeviceCacheTTL),
			vendor.WithWatchInterval(cfg.Vendor.WatchInterval),
			vendor.WithTTSCommands(ttsCommands(cfg.Vendor.TTSCommands)),
		}
	)

	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis.URL, redis.WithLogger(log.With("component", "redis")))
		if err != nil {
			return err
		}
		providerOpt = append(providerOpt, vendor.WithCache(
			cache.NewRedis[[]vendor.Device](client,
				cache.WithPrefix(cfg.Redis.Prefix+":devices"),
				cache.WithRedisDefaultTTL(cfg.Vendor.DeviceCacheTTL),
			),
		))
		healthOpts = append(healthOpts, speakerhub.WithReadinessCheck("redis", redis.Healthcheck(client)))
		runOpts = append(runOpts, speakerhub.ShutdownHook(redis.Shutdown(client)))
		log.Info("device cache backed by redis")
	}

	platform := vendor.NewMemoryPlatform(vendorAccounts(cfg.Vendor), vendorDevices(cfg.Vendor.Devices))
	provider := vendor.NewProvider(platform, providerOpt...)

	runOpts = append(runOpts,
		speakerhub.StartupHook(provider.StartFunc()),
		speakerhub.ShutdownHook(provider.Shutdown()),
	)

	app := speakerhub.New(
		speakerhub.WithCustomLogger(log),
		speakerhub.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.CORS(middlewares.WithAllowOrigins(cfg.API.CORSOrigins...)),
			middlewares.NoCache(),
			middlewares.Timeout(cfg.API.RequestTimeout),
		),
		speakerhub.WithErrorHandler(middlewares.ErrorHandler(log)),
		speakerhub.WithHealthChecks(healthOpts...),
		speakerhub.WithHandlers(
			handlers.NewInfo(cfg.App.Name, cfg.App.Version),
			handlers.NewAuth(directory, tokens),
			handlers.NewVendor(provider, tokens,
				handlers.WithDefaultAccount(cfg.Vendor.Username, cfg.Vendor.Password),
			),
			handlers.NewDevice(provider, tokens),
		),
	)

	log.Info("starting gateway",
		slog.String("addr", cfg.API.Addr()),
		slog.String("version", cfg.App.Version),
		slog.Int("system_users", len(cfg.SystemAuth.Users)),
	)
	return app.Run(cfg.API.Addr(), runOpts...)
}

func accounts(in []config.UserConfig) []users.Account {
	out := make([]users.Account, 0, len(in))
	for _, u := range in {
		out = append(out, users.Account{Username: u.Username, Password: u.Password})
	}
	return out
}

// vendorAccounts collects the accounts the demo platform accepts. The
// default vendor account is always one of them.
func vendorAccounts(cfg config.VendorConfig) map[string]string {
	out := make(map[string]string, len(cfg.Accounts)+1)
	for _, a := range cfg.Accounts {
		out[a.Username] = a.Password
	}
	if cfg.Username != "" && cfg.Password != "" {
		out[cfg.Username] = cfg.Password
	}
	return out
}

func vendorDevices(in []config.DeviceConfig) []vendor.Device {
	out := make([]vendor.Device, 0, len(in))
	for _, d := range in {
		out = append(out, vendor.Device{
			DeviceID: d.DeviceID,
			Name:     d.Name,
			Alias:    d.Alias,
			MiotDID:  d.MiotDID,
			Hardware: strings.ToUpper(d.Hardware),
		})
	}
	return out
}

// ttsCommands merges configured overrides into the built-in table. Config
// keys arrive lowercased, hardware models are matched uppercased.
func ttsCommands(overrides map[string]string) map[string]string {
	out := maps.Clone(vendor.DefaultTTSCommands)
	for model, cmd := range overrides {
		out[strings.ToUpper(model)] = cmd
	}
	return out
}
