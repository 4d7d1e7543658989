package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jessevdk/go-flags"

	"github.com/u1f408/accord/clients/discord"
	"github.com/u1f408/accord/clients/target"
	"github.com/u1f408/accord/config"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/handlers"
	"github.com/u1f408/accord/middleware"
	"github.com/u1f408/accord/services/messagecache"
	"github.com/u1f408/accord/usecases/relay"
	"github.com/u1f408/accord/utils"
)

const gatewayEventBuffer = 256

type Options struct {
	Debug   bool   `long:"debug" description:"Enable debug logging"`
	EnvFile string `long:"env-file" description:"Load environment variables from this file instead of ./.env"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.Debug {
		log.SetLevel(slog.LevelDebug)
	} else {
		log.SetLevel(slog.LevelInfo)
	}

	if err := run(opts); err != nil {
		log.Error("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	cfg, err := config.LoadConfig(opts.EnvFile)
	if err != nil {
		return err
	}

	instanceLock, err := utils.NewInstanceLock(cfg.LockDir, cfg.DiscordConfig.BotToken)
	if err != nil {
		return err
	}
	if err := instanceLock.TryLock(); err != nil {
		return err
	}
	defer func() {
		if err := instanceLock.Unlock(); err != nil {
			log.Warn("⚠️ Failed to release instance lock: %v", err)
		}
	}()

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackAlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "accord",
	})
	defer alertMiddleware.Wait()

	gateway, err := discord.NewDiscordGateway(cfg.DiscordConfig.BotToken, gatewayEventBuffer)
	if err != nil {
		return err
	}

	messageCache := messagecache.NewMessageCacheService(cfg.CacheMessagesPerChannel)
	httpClient := &http.Client{Timeout: cfg.TargetConfig.Timeout}
	targetClient := target.NewTargetClient(httpClient, cfg.TargetConfig.BaseURL)
	relayUseCase := relay.NewRelayUseCase(targetClient, cfg.TargetConfig.CommandPattern)
	eventsHandler := handlers.NewDiscordEventsHandler(messageCache, relayUseCase, alertMiddleware, cfg.DispatchWorkers)

	var healthServer *http.Server
	if cfg.HealthPort != "" {
		router := mux.NewRouter()
		handlers.NewHealthHandler(messageCache).SetupEndpoints(router)
		healthServer = &http.Server{
			Addr:              ":" + cfg.HealthPort,
			Handler:           alertMiddleware.HTTPMiddleware(router),
			ReadHeaderTimeout: 30 * time.Second,
		}
		go func() {
			log.Info("✅ Health endpoint listening on http://localhost%s/health", healthServer.Addr)
			if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("❌ Health server error: %v", err)
			}
		}()
	}

	if err := gateway.Open(); err != nil {
		shutdownHealthServer(healthServer)
		return err
	}
	log.Info("📤 Relaying events to %s", targetClient.BaseURL())

	// Closing the gateway ends the event stream, which lets the loop drain in-flight relays
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	go func() {
		<-stop
		log.Info("🛑 Shutdown signal received, cleaning up...")
		if err := gateway.Close(); err != nil {
			log.Error("❌ Failed to close Discord gateway: %v", err)
		}
	}()

	runErr := eventsHandler.Run(context.Background(), gateway.Events())

	if err := gateway.Close(); err != nil {
		log.Error("❌ Failed to close Discord gateway: %v", err)
	}
	shutdownHealthServer(healthServer)

	if runErr != nil {
		return runErr
	}
	log.Info("✅ Stopped gracefully")
	return nil
}

func shutdownHealthServer(server *http.Server) {
	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("❌ Health server shutdown error: %v", err)
	}
}
