package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/airndlab/support-qna/internal/adapters/http"
	"github.com/airndlab/support-qna/internal/bootstrap"
	"github.com/airndlab/support-qna/internal/config"
	"github.com/airndlab/support-qna/internal/observability/logging"
	"github.com/airndlab/support-qna/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.Setup("bot", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chat, err := bootstrap.NewChat(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer chat.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("bot")
	router := httpadapter.NewChatRouter(chat.ChatUC, serverMetrics, httpadapter.TrafficConfig{
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxInFlight:    cfg.APIMaxInFlight,
		QueueWait:      time.Duration(cfg.APIQueueWaitMS) * time.Millisecond,
	}).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("chat backend listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("chat backend server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("chat backend shutdown error: %v", err)
	}
}
