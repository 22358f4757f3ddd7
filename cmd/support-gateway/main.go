package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"supportstack.local/projects/support-gateway/internal/agents"
	"supportstack.local/projects/support-gateway/internal/config"
	"supportstack.local/projects/support-gateway/internal/dispatch"
	"supportstack.local/projects/support-gateway/internal/gateway"
	"supportstack.local/projects/support-gateway/internal/httpapi"
	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/orders"
	"supportstack.local/projects/support-gateway/internal/retrieval"
	"supportstack.local/projects/support-gateway/internal/session"
	"supportstack.local/projects/support-gateway/internal/subscribers"
	logging "supportstack.local/projects/support-gateway/internal/subscribers/logging"
	"supportstack.local/projects/support-gateway/internal/subscribers/webhook"
	"supportstack.local/projects/support-gateway/internal/ticket"
)

func main() {
	logger := log.New(os.Stdout, "support-gateway ", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	subs := []subscribers.Subscriber{logging.New(logger)}
	for idx, webhookURL := range cfg.WebhookURLs {
		subs = append(subs, webhook.New(webhookSubscriberName(idx, webhookURL), webhookURL, logger))
	}
	dispatcher := dispatch.New(logger, subs)

	store, cleanup, err := newSessionStore(logger, cfg)
	if err != nil {
		logger.Fatalf("failed to initialize session store: %v", err)
	}
	defer cleanup()

	tickets, err := ticket.NewGormStore(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatalf("failed to initialize ticket store: %v", err)
	}
	defer func() {
		if err := tickets.Close(); err != nil {
			logger.Printf("ticket store close error: %v", err)
		}
	}()

	orderStore, err := orders.NewGormStore(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatalf("failed to initialize order store: %v", err)
	}
	defer func() {
		if err := orderStore.Close(); err != nil {
			logger.Printf("order store close error: %v", err)
		}
	}()
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := orderStore.Seed(seedCtx, orders.SampleOrders(time.Now().UTC())); err != nil {
		logger.Printf("order seed warning: %v", err)
	}
	seedCancel()

	var searcher retrieval.Searcher
	if cfg.RetrievalURL != "" {
		client := retrieval.NewClient(logger, cfg.RetrievalURL)
		probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if !client.Healthy(probeCtx) {
			logger.Printf("retrieval service %s is not responding yet", cfg.RetrievalURL)
		}
		probeCancel()
		searcher = client
	} else {
		searcher = retrieval.NewStaticIndex()
	}

	service := gateway.NewService(gateway.Config{
		Logger:     logger,
		Store:      store,
		Classifier: intent.NewKeywordClassifier(),
		Extractor:  intent.NewExtractor(),
		FAQ:        agents.NewFAQAgent(logger, searcher, cfg.ConfidenceThreshold),
		OrderQuery: agents.NewOrderQueryAgent(logger, orderStore),
		Escalation: agents.NewEscalationAgent(logger, tickets, cfg.HistoryWindow),
		Dispatcher: dispatcher,
		QueueSize:  cfg.QueueSize,
	})

	srv := httpapi.NewServer(logger, cfg.HTTPAddr, service)
	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server crashed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
}

func newSessionStore(logger *log.Logger, cfg config.Config) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "memory":
		store := session.NewMemoryStore()
		stop := make(chan struct{})
		go pruneIdleSessions(logger, store, cfg.SessionIdleTTL, stop)
		cleanup := func() {
			close(stop)
			if err := store.Close(); err != nil {
				logger.Printf("session store close error: %v", err)
			}
		}
		return store, cleanup, nil
	case "gorm":
		store, err := session.NewGormStore(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Printf("session store close error: %v", err)
			}
		}
		return store, cleanup, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		store := session.NewRedisStore(rdb)
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Printf("session store close error: %v", err)
			}
		}
		return store, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}
}

func pruneIdleSessions(logger *log.Logger, store *session.MemoryStore, ttl time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if pruned := store.PruneIdle(ttl); pruned > 0 {
				logger.Printf("pruned %d idle sessions", pruned)
			}
		}
	}
}

func webhookSubscriberName(index int, webhookURL string) string {
	parsed, err := url.Parse(webhookURL)
	if err == nil {
		host := strings.TrimSpace(parsed.Host)
		if host != "" {
			return host
		}
	}
	return fmt.Sprintf("webhook-%d", index+1)
}
