package app

import (
	"context"
	"log"
	"sync"

	"github.com/dzikowski/barbell-bot/config"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
	"github.com/dzikowski/barbell-bot/internal/domain/service"
	ws "github.com/dzikowski/barbell-bot/internal/handlers/websocket"
	redisrepo "github.com/dzikowski/barbell-bot/internal/infrastructure/cache"
	"github.com/dzikowski/barbell-bot/internal/infrastructure/dex"
	"github.com/dzikowski/barbell-bot/internal/infrastructure/queue"
	"github.com/dzikowski/barbell-bot/internal/infrastructure/signer"
	chrepo "github.com/dzikowski/barbell-bot/internal/infrastructure/storage"
	"github.com/dzikowski/barbell-bot/internal/lib/logger"
)

// AppContext holds all app dependencies
type AppContext struct {
	Config      *config.Config
	Engine      *service.Engine
	Broadcaster *ws.WebSocketBroadcaster
	PriceCache  repository.PriceCache
	Publisher   repository.TradePublisher
	Log         *logger.Logger

	mu   sync.RWMutex
	last *service.CycleResult
}

// NewApp initializes the app context with all dependencies
func NewApp(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &AppContext{Config: cfg, Log: logger.New()}
	log.Println("Configuration loaded")

	walletSigner, err := signer.NewFromPath(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Signer initialized for wallet %s", walletSigner.Wallet())

	dexClient := dex.NewClient(cfg.DexBaseURL, walletSigner)

	// Try to initialize persistent storage (ClickHouse); an in-memory store
	// keeps cycles running with the history accumulated since process start.
	var store repository.PriceStore
	clickhouseRepo, err := chrepo.NewClickHouseRepository(chrepo.ClickHouseConfig{
		Addr:     cfg.ClickhouseAddr,
		Username: cfg.ClickhouseUsername,
		Password: cfg.ClickhousePassword,
		Timeout:  cfg.ClickhouseTimeout,
	})
	if err != nil {
		log.Printf("Warning: Failed to connect to ClickHouse: %v. Continuing with in-memory storage.", err)
		store = chrepo.NewMemoryStore()
	} else {
		store = clickhouseRepo
		log.Println("ClickHouse persistent storage initialized")
	}

	app.PriceCache = redisrepo.NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	log.Println("Redis cache initialized")

	if len(cfg.KafkaBrokers) > 0 {
		app.Publisher = queue.NewKafkaTradePublisher(queue.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		log.Println("Kafka trade publisher initialized")
	} else {
		log.Println("Kafka not configured, trade publishing disabled")
	}

	app.Broadcaster = ws.NewWebSocketBroadcaster()

	app.Engine = service.NewEngine(service.Config{
		BaseToken:      cfg.BaseToken,
		ReferenceToken: cfg.ReferenceToken,
		TrackedTokens:  cfg.TrackedTokens,
		TargetBasePct:  cfg.TargetBasePct,
		Tolerance:      cfg.Tolerance,
		ProbeAmount:    cfg.ProbeAmount,
	}, service.Deps{
		Dex:       dexClient,
		Store:     store,
		Cache:     app.PriceCache,
		Publisher: app.Publisher,
		Log:       app.Log,
	})
	log.Println("Rebalancing engine initialized")

	return app, nil
}

// RunCycle runs one rebalancing cycle, remembers the result and broadcasts
// it to websocket observers. A failed cycle leaves the previous result in
// place.
func (a *AppContext) RunCycle(ctx context.Context) error {
	result, err := a.Engine.RunCycle(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.last = result
	a.mu.Unlock()

	a.Broadcaster.BroadcastCycle(result)
	return nil
}

// LastCycle returns the most recent successful cycle result, or nil.
func (a *AppContext) LastCycle() *service.CycleResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Cleanup performs graceful shutdown of all components
func (a *AppContext) Cleanup(ctx context.Context) {
	if a.Publisher != nil {
		log.Println("Closing Kafka publisher...")
		if err := a.Publisher.Close(); err != nil {
			log.Printf("Error closing Kafka publisher: %v", err)
		}
	}
	log.Println("All resources cleaned up")
}
