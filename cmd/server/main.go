package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rikuzen/chatferry/internal/config"
	"github.com/rikuzen/chatferry/internal/db"
	"github.com/rikuzen/chatferry/internal/dialog"
	"github.com/rikuzen/chatferry/internal/httpapi"
	"github.com/rikuzen/chatferry/internal/httpapi/handlers"
	"github.com/rikuzen/chatferry/internal/logstore"
	"github.com/rikuzen/chatferry/internal/sink"
	"github.com/rikuzen/chatferry/internal/translate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channels, err := config.LoadChannelTable(cfg.ChannelFile)
	if err != nil {
		log.Fatalf("load channel table: %v", err)
	}

	registry := translate.NewRegistry()
	registry.Register("google", func(context.Context) (translate.Provider, error) {
		return translate.NewGoogleProvider(""), nil
	})
	zh := translate.NewZhConvertProvider(cfg.ZhTableFile)
	registry.Register("zhconvert", func(context.Context) (translate.Provider, error) {
		return zh, nil
	})

	window := newWindow(cfg)

	store, err := logstore.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("open log store: %v", err)
	}

	archive, err := logstore.NewArchive(db.Connect(cfg.ArchiveDSN))
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}

	overlay := sink.NewOverlayHub()
	relay := sink.NewTwitchRelay(cfg.TwitchUsername, cfg.TwitchToken, cfg.TwitchChannel)

	sinks := []dialog.RecordSink{archive, overlay, relay}
	var audio *sink.AudioQueue
	if cfg.RabbitURL != "" {
		audio, err = sink.NewAudioQueue(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("audio queue disabled: %v", err)
		} else {
			defer audio.Close()
			sinks = append(sinks, audio)
		}
	}

	svc := dialog.NewService(channels, window, registry, dialog.TranslationConfig{
		From:     cfg.TranslateFrom,
		To:       cfg.TranslateTo,
		Provider: cfg.TranslateProvider,
	}, store, sinks...)

	h := handlers.NewHandler(svc, store, archive, overlay, relay)
	router := httpapi.NewRouter(h, cfg.AuthSecret)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	relay.Stop()
	svc.Wait()
}

func newWindow(cfg config.Config) dialog.Window {
	ttl := time.Duration(cfg.DedupWindowMS) * time.Millisecond
	if cfg.DedupBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return dialog.NewRedisWindow(rdb, ttl)
	}

	w := dialog.NewMemoryWindow(ttl)
	go w.RunSweeper(context.Background(), time.Minute)
	return w
}
