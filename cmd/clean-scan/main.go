package main

import (
	"context"
	"encoding/json"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devprompt93/clean-scan/internal/config"
	"github.com/devprompt93/clean-scan/internal/httpapi"
	"github.com/devprompt93/clean-scan/internal/hub"
	"github.com/devprompt93/clean-scan/internal/kv"
	"github.com/devprompt93/clean-scan/internal/notify"
	"github.com/devprompt93/clean-scan/internal/queue"
	"github.com/devprompt93/clean-scan/internal/snapshot"
	"github.com/devprompt93/clean-scan/internal/store/localkv"
	"github.com/devprompt93/clean-scan/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type changeEvent struct {
	Type      string    `json:"type"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("clean-scan", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	slots, cleanup, err := openKV(cfg)
	if err != nil {
		log.Fatalf("kv driver %s: %v", cfg.KVDriver, err)
	}
	defer cleanup()

	bus := notify.NewBus()
	snapshots := snapshot.New(slots, cfg.SnapshotBaseURL, snapshot.Options{
		TTL:           cfg.SnapshotTTL,
		StaleFallback: cfg.SnapshotStaleFallback,
	})
	submitter := queue.NewSubmitter(slots, cfg.SubmitEndpoint, queue.Options{
		Timeout: cfg.SubmitTimeout,
	})
	dataStore := localkv.New(slots, snapshots, submitter, bus)

	h := hub.New()
	bus.OnAnyChange(func(slot string) {
		event := changeEvent{Type: "slot_changed", Slot: slot, CreatedAt: time.Now().UTC()}
		payload, _ := json.Marshal(event)
		h.Broadcast(payload, slot)
	})

	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute: cfg.RateLimitPerMinute,
		IPBurst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/", httpapi.NewHandler(dataStore).Routes())
	mux.Handle("/realtime/", sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		h.Register(client)
		defer h.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				h.UpdateSubscription(client, hub.Subscription{})
			} else {
				h.UpdateSubscription(client, hub.Subscription{Slots: parsed.Slots})
			}
		}
	}))

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "clean-scan")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	flushCtx, stopFlusher := context.WithCancel(context.Background())
	defer stopFlusher()
	if cfg.FlushInterval > 0 {
		go queue.Start(flushCtx, cfg.FlushInterval, queue.NewFlusher(submitter, bus))
	}

	go func() {
		log.Printf("clean-scan listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openKV(cfg config.Config) (kv.Store, func(), error) {
	switch cfg.KVDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return kv.NewRedis(client), func() { _ = client.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := kv.NewPostgres(context.Background(), pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}
