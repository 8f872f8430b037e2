// Command superpoke runs the plugin host against a OneBot v11 WebSocket endpoint.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/admin"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/onebot"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/settings"
	"github.com/Hafuunano/Plugin-SuperPoke/middlewares/whitelist"

	_ "github.com/Hafuunano/Plugin-SuperPoke/plugins/plugin-echo"
	_ "github.com/Hafuunano/Plugin-SuperPoke/plugins/plugin-hello"
	_ "github.com/Hafuunano/Plugin-SuperPoke/plugins/plugin-ping"
	_ "github.com/Hafuunano/Plugin-SuperPoke/plugins/plugin-poke"
	_ "github.com/Hafuunano/Plugin-SuperPoke/plugins/plugin-superpoke"
)

func main() {
	cfg, err := settings.Load()
	if err != nil {
		log := logger.Get("main")
		log.Fatal().Err(err).Msg("load settings")
	}
	logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		File:     cfg.LogFile,
		MaxSize:  cfg.LogMaxSize,
		MaxFiles: cfg.LogMaxFiles,
	})
	log := logger.Get("main")

	admins, err := admin.Load(cfg.DataDir, cfg.SuperAdmins...)
	if err != nil {
		log.Fatal().Err(err).Msg("load admin list")
	}
	if admins.Len() == 0 {
		log.Warn().Msg("no super admins configured; superpoke management commands are unusable")
	}

	host := protocol.Engine
	client := onebot.NewClient(cfg.WSURL, cfg.AccessToken, host, cfg.SendRate, cfg.SendBurst)
	host.Configure(
		protocol.WithPrefixes(cfg.CommandPrefixes...),
		protocol.WithNickNames(cfg.NickNames...),
		protocol.WithAdmins(admins),
		protocol.WithQueueSize(cfg.QueueSize),
		protocol.WithSender(client),
	)
	if cfg.WhitelistEnabled {
		host.Use(whitelist.Handler(cfg.DataDir))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- host.Run(ctx) }()
	go func() { errCh <- client.Run(ctx) }()

	log.Info().Str("url", cfg.WSURL).Int("admins", admins.Len()).Msg("superpoke started")
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("stopped with error")
			stop()
		}
	}
	log.Info().Msg("bye")
}
