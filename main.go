package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"yasmingpt/internal/api"
	"yasmingpt/internal/config"
	"yasmingpt/internal/provider"
	"yasmingpt/internal/redis"
	"yasmingpt/internal/service/chat"
	"yasmingpt/internal/service/translate"
	"yasmingpt/internal/storage"
	"yasmingpt/internal/store"
	"yasmingpt/internal/worker"
)

func main() {
	cfgPath := os.Getenv("YASMINGPT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("YASMINGPT_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	log.Printf("dbType: %s", dbType)
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	cache, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("create redis client: %v", err)
	}
	defer cache.Close()

	var primary, backup provider.Provider
	if cfg.Providers.Primary.APIKey != "" {
		primary = provider.NewOpenRouter(cfg.Providers.Primary, cfg.BasicConfig.AppURL, cfg.BasicConfig.AppTitle)
	} else {
		log.Printf("primary provider not configured, relying on backup and offline replies")
	}
	if cfg.Providers.Backup.APIKey != "" {
		backup = provider.NewGemini(cfg.Providers.Backup)
	} else {
		log.Printf("backup provider not configured")
	}

	conversationStore := store.New(db, cache)
	orchestrator := chat.NewOrchestrator(primary, backup)
	turns := worker.NewManager(0)
	chatService := chat.NewService(conversationStore, orchestrator, turns)
	translateService := translate.New(primary, backup)
	handlers := api.NewHandler(chatService, translateService, conversationStore)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":5000"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
