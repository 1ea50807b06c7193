package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-dialogue/internal/config"
	"github.com/jwebster45206/npc-dialogue/internal/handlers"
	"github.com/jwebster45206/npc-dialogue/internal/logger"
	"github.com/jwebster45206/npc-dialogue/internal/services"
	"github.com/jwebster45206/npc-dialogue/internal/services/commands"
	"github.com/jwebster45206/npc-dialogue/internal/services/events"
	"github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting NPC Dialogue API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"dispatch_delay", cfg.DispatchDelay)

	redisService, err := services.NewRedisService(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create redis service", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := redisService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Build the catalog from static definitions; invalid entries degrade
	// individually without stopping startup.
	store := storage.NewFileStore(cfg.DataDir, log)
	defs, err := store.LoadNPCs()
	if err != nil {
		log.Error("Failed to load npc definitions", "error", err)
		os.Exit(1)
	}
	catalog := npc.NewCatalog(log)
	if err := catalog.Build(defs); err != nil {
		log.Warn("Some npc definitions were rejected", "error", err)
	}
	log.Info("NPC catalog ready", "count", catalog.Count())

	bus := events.NewBus(log)
	broadcaster := events.NewBroadcaster(redisService.Client(), log)
	registry := commands.NewRegistry(log)

	dispatcher := dialogue.NewDispatcher(bus, broadcaster, registry, cfg.DispatchDelay, log)
	stage := services.NewLogStage(log)
	navigator := dialogue.NewNavigator(catalog, stage, broadcaster, dispatcher, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(redisService, log)
	mux.Handle("/health", healthHandler)

	dialogueHandler := handlers.NewDialogueHandler(navigator, log)
	mux.Handle("/v1/dialogue", dialogueHandler)
	mux.Handle("/v1/dialogue/", dialogueHandler)

	npcHandler := handlers.NewNPCHandler(catalog, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	eventsHandler := handlers.NewEventsHandler(redisService.Client(), log)
	mux.Handle("/v1/events", eventsHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so the SSE endpoint can stream.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// A deferred action still waiting out its delay will never fire once
	// the process exits; drop it explicitly so shutdown is quiet.
	dispatcher.CancelPending()

	if err := redisService.Close(); err != nil {
		log.Error("Error closing redis connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
