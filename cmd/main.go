package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/content"
	"wayfarer/internal/engine"
	"wayfarer/internal/generators"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/saves"
	"wayfarer/internal/storage"
	"wayfarer/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Story content is the one hard dependency
	contentPath := cfg.Game.ContentPath
	if contentPath == "" {
		contentPath = "content/story.yaml"
	}
	bundle, err := content.Load(contentPath)
	if err != nil {
		log.Fatalf("Failed to load story content: %v", err)
	}
	log.Printf("Story content loaded: %d scenes", len(bundle.SceneIDs()))

	// Initialize storage connections. Saves fall back to an in-memory
	// store when neither backend is reachable.
	var store interfaces.SaveStore

	mysqlStore, err := storage.NewMySQLStore(cfg.Database.MySQL)
	if err != nil {
		log.Printf("Warning: Failed to connect to MySQL: %v", err)
	} else {
		defer mysqlStore.Close()
		store = mysqlStore
		log.Println("MySQL connected successfully")
	}

	redisStore, err := storage.NewRedisStore(cfg.Database.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
	} else {
		defer redisStore.Close()
		store = redisStore
		log.Println("Redis connected successfully")
	}

	if store == nil {
		log.Println("Warning: No storage backend available, saves are in-memory only")
		store = storage.NewMemoryStore()
	}

	// Initialize the dialog generator. An empty API key disables
	// generated dialog nodes; authored content still works.
	var generator interfaces.DialogGenerator
	if cfg.AI.Generator.APIKey == "" {
		log.Println("Warning: No generator API key provided. Generated dialog is disabled.")
	} else {
		client, err := generators.NewDialogClient(cfg.AI.Generator)
		if err != nil {
			log.Printf("Warning: Failed to initialize dialog generator: %v", err)
		} else {
			queue := generators.NewDialogQueue(client, cfg.Queue.MaxWorkers, cfg.Queue.MaxQueueSize)
			queue.Start(context.Background())
			defer queue.Stop()
			generator = queue
			log.Println("Dialog generator initialized successfully")
		}
	}

	engCfg := engine.Config{
		Bundle:            bundle,
		Generator:         generator,
		TypewriterCPS:     cfg.Game.TypewriterCPS,
		GenerationTimeout: cfg.Game.GenerationTimeout.Std(),
	}

	sessions := web.NewSessionManager(func(sessionID string) (*engine.Engine, error) {
		c := engCfg
		c.SessionID = sessionID
		return engine.New(c)
	})

	saveManager := saves.NewManager(store, engCfg)

	hub := web.NewStateHub()
	go hub.Run()

	r := web.NewRouter(cfg, hub, sessions, saveManager)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	// Start server in background
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
