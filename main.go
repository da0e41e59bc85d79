// Package main, wordless backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi Dependency Injection "wire-up":
//  1. Flag'leri ve config'i yükle
//  2. SQLite'ı başlat (emote geçmişi + profiller)
//  3. Redis'e bağlan (connection registry + reaction state)
//  4. Emoji vocabulary'yi yükle
//  5. Repository'leri oluştur
//  6. WebSocket Hub'ı başlat
//  7. Service'leri ve rate limiter'ları oluştur
//  8. Handler'ları oluştur, route'ları bağla
//  9. CORS yapılandır, HTTP Server'ı başlat
//  10. Graceful shutdown
//
// Global değişken YOK; her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/pflag"

	"github.com/akinalp/wordless/config"
	"github.com/akinalp/wordless/database"
	"github.com/akinalp/wordless/pkg/emoji"
	"github.com/akinalp/wordless/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var envFile, addrFlag string
	flagSet := pflag.NewFlagSet("wordless", pflag.ExitOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flagSet.StringVar(&addrFlag, "addr", "", "listen address, overrides SERVER_HOST/SERVER_PORT (ör: :9090)")
	flagSet.Parse(os.Args[1:])

	log.Println("[main] wordless server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	addr := cfg.Server.Addr()
	if addrFlag != "" {
		addr = addrFlag
	}
	log.Printf("[main] config loaded (addr=%s, jwks=%s)", addr, cfg.Identity.KeySetURL())

	// ─── 2. Database ───
	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Redis ───
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	pingCancel()
	if err != nil {
		log.Fatalf("[main] failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
	}
	log.Printf("[redis] connected to %s (prefix=%s)", cfg.Redis.Addr, cfg.Redis.KeyPrefix)

	// ─── 4. Emoji vocabulary ───
	vocab, err := emoji.Default()
	if err != nil {
		log.Fatalf("[main] failed to load emoji vocabulary: %v", err)
	}
	log.Printf("[main] emoji vocabulary loaded (%d emojis)", vocab.Len())

	// ─── 5. Repository Layer ───
	repos := initRepositories(db.Conn, rdb, cfg.Redis.KeyPrefix)

	// ─── 6. WebSocket Hub ───
	//
	// Hub, bu süreçteki tüm WebSocket bağlantılarını tutar.
	// `go hub.Run()` ayrı bir goroutine'de register/unregister loop'unu başlatır.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 7. Service Layer ───
	svcs, limiters := initServices(repos, hub, vocab, cfg)
	defer limiters.Stop()

	// ─── 8. Handlers + Routes ───
	h := initHandlers(svcs, limiters, hub)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Connection)

	// ─── 9. CORS + HTTP Server ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 10. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantılarını kapat: her client close frame alır,
	// handler'lar bağlantıyı registry'den siler. Sonra HTTP server'ı kapat.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	// Devam eden stale-connection temizliklerinin Redis kapanmadan bitmesini bekle
	svcs.Broadcaster.WaitCleanup()

	log.Println("[main] server stopped gracefully")
}
