package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/ai"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/config"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/engine"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/metrics"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/storage"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/transport"
)

// buildEngine resolves the configured fleet/ship AI backend, falling back
// to ai.StubEngine for any unrecognized name so the simulator always comes
// up runnable without an LLM endpoint configured (§6).
func buildEngine(name, model string, cfg config.Config) ai.Engine {
	timeout := cfg.HTTPTimeout()
	switch name {
	case "ollama":
		return ai.NewOllamaEngine(model, cfg.OllamaHost, timeout)
	case "openai":
		return ai.NewOpenAIEngine(model, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, timeout)
	default:
		return ai.StubEngine{}
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()
	log.Printf("starting submarine bridge simulator on %s:%d (tick_hz=%d)", cfg.Host, cfg.Port, cfg.TickHz)

	world, ownshipID := sim.DefaultScenario()

	var orchestrator engine.AIOrchestrator
	var stopOrchestrator func()
	if cfg.UseAIOrchestrator {
		fleetEngine := buildEngine(cfg.AIFleetEngine, cfg.AIFleetModel, cfg)
		shipEngine := buildEngine(cfg.AIShipEngine, cfg.AIShipModel, cfg)
		orchCfg := ai.DefaultConfig()
		orchCfg.FleetCadenceS = cfg.AIFleetCadenceS
		orchCfg.ShipCadenceS = cfg.AIShipCadenceS
		orchCfg.ShipAlertCadenceS = cfg.AIShipAlertCadenceS
		orchCfg.FleetTriggerConf = cfg.AIFleetTriggerConfThresh
		orchCfg.HTTPTimeout = cfg.HTTPTimeout()
		o := ai.NewOrchestrator(fleetEngine, shipEngine, orchCfg)
		orchestrator = o
		stopOrchestrator = o.Stop
	}

	var events engine.EventSink = storage.NoopStore{}
	if cfg.SQLitePath != "" {
		store := storage.Open(cfg.SQLitePath)
		events = store
		defer store.Close()
	}

	settings := engine.DefaultSettings()
	settings.TickHz = cfg.TickHz
	settings.RequireCaptainConsent = cfg.RequireCaptainConsent
	settings.UseAIOrchestrator = cfg.UseAIOrchestrator
	settings.SnapshotS = cfg.SnapshotS
	settings.FirstTaskDelayS = cfg.FirstTaskDelayS
	settings.MaintSpawnScale = cfg.MaintSpawnScale

	// The hub must exist before Core (Core's constructor takes hub.Publish
	// as its PublishFunc), so wiring happens in two steps: build the hub
	// with a nil Core, then bind it once Core exists.
	hub := transport.NewHub(nil)
	core := engine.NewCore(world, ownshipID, settings, hub.Publish, events, orchestrator, time.Now().UnixNano())
	hub.SetCore(core)
	core.Debug.EnemyStatic = cfg.EnemyStatic

	router := transport.NewRouter(hub)
	router.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancelTick := context.WithCancel(context.Background())
	stopHub := make(chan struct{})

	go hub.Run(stopHub)
	go core.Run(ctx)

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("shutting down (signal: %v)", sig)

	cancelTick()
	close(stopHub)
	if stopOrchestrator != nil {
		stopOrchestrator()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("stopped")
}
