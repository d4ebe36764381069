// @title Imperium Game Server API
// @version 1.0
// @description Authoritative 4X game engine and network server
// @BasePath /api/v1
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/backbay/imperium/internal/config"
	"github.com/backbay/imperium/internal/logger"
	"github.com/backbay/imperium/internal/playermanager"
	"github.com/backbay/imperium/internal/replay"
	"github.com/backbay/imperium/internal/replaystore"
	"github.com/backbay/imperium/internal/rules"
	"github.com/backbay/imperium/internal/server"
	"github.com/backbay/imperium/internal/turnmanager"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("logger init: %v", err)
	}

	catalog := rules.DefaultCatalog()
	if cfg.RulesPath != "" {
		loaded, err := rules.LoadCatalog(cfg.RulesPath)
		if err != nil {
			log.Fatalf("load rules bundle: %v", err)
		}
		catalog = loaded
	}

	store, err := replaystore.Open(cfg.ReplayStorePath)
	if err != nil {
		log.Fatalf("open replay store: %v", err)
	}
	defer store.Close()

	grace := time.Duration(cfg.DisconnectGraceSeconds) * time.Second
	pm := playermanager.NewManager(cfg.MinPlayers, cfg.MaxPlayers, cfg.MaxObservers, grace)

	tmpl := server.GameTemplate{
		Catalog:             catalog,
		HorizWrap:           cfg.HorizWrap,
		Seed:                cfg.MapSeed,
		TurnLimit:           cfg.TurnLimit,
		CultureThresholdPct: cfg.CultureThresholdPct,
		TurnMode:            turnmanager.ModeSequential,
		TurnParams: turnmanager.TimerParams{
			BaseSeconds:    cfg.TurnBaseSeconds,
			MinSeconds:     cfg.TurnMinSeconds,
			MaxSeconds:     cfg.TurnMaxSeconds,
			PerUnitSeconds: cfg.TurnPerUnitSeconds,
			PerCitySeconds: cfg.TurnPerCitySeconds,
		},
		GameCode: cfg.GameCode,
	}

	hub := server.NewHub(tmpl, pm)
	hub.Archive = func(f replay.File) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := store.Save(ctx, cfg.GameCode, f, time.Now()); err != nil {
			log.Printf("archive replay: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(ctx, c.Writer, c.Request)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("imperium server starting on %s", cfg.BindAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
