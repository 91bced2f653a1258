package ai

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/engine"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/metrics"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// Config is the orchestrator's cadence/threshold configuration (§4.9).
type Config struct {
	FleetCadenceS       float64
	FleetAlertCadenceS  float64
	FleetTriggerConf    float64
	ShipCadenceS        float64
	ShipAlertCadenceS   float64
	ShipAlertRangeM     float64
	HTTPTimeout         time.Duration
	MaxConcurrentJobs   int64
}

func DefaultConfig() Config {
	return Config{
		FleetCadenceS: sim.DefaultFleetCadenceS, FleetAlertCadenceS: sim.DefaultFleetAlertCadenceS,
		FleetTriggerConf: sim.DefaultFleetTriggerConf, ShipCadenceS: sim.DefaultShipCadenceS,
		ShipAlertCadenceS: sim.DefaultShipAlertCadenceS, ShipAlertRangeM: sim.ShipAlertRangeM,
		HTTPTimeout: sim.DefaultAIHTTPTimeoutS * time.Second, MaxConcurrentJobs: 8,
	}
}

type jobResult struct {
	action *engine.ValidatedAction
	record engine.AIRunRecord
}

// Orchestrator schedules fleet/ship AI runs on independent cadences,
// invokes a pluggable Engine per run, validates and (on fallback) derives
// navigation, and queues the result for tick-thread application (§4.9,
// §9 design note: "worker-pool+channel AI jobs"). Concurrency is bounded
// by a weighted semaphore (golang.org/x/sync); job goroutines report into
// a single buffered results channel, drained non-blockingly from the tick
// thread (see drainResultsNonBlocking).
type Orchestrator struct {
	FleetEngine Engine
	ShipEngine  Engine
	Cfg         Config

	sem *semaphore.Weighted

	mu           sync.Mutex
	recentRuns   []engine.AIRunRecord
	actionQueue  []engine.ValidatedAction
	resultsCh    chan jobResult
	done         chan struct{}

	fleetAccum    float64
	fleetAlert    bool
	fleetAlertT   float64
	shipAccum     map[string]float64
	shipEmconHigh map[string]float64
	lastOrders    map[string]map[string]any
}

func NewOrchestrator(fleetEngine, shipEngine Engine, cfg Config) *Orchestrator {
	return &Orchestrator{
		FleetEngine: fleetEngine, ShipEngine: shipEngine, Cfg: cfg,
		sem:           semaphore.NewWeighted(cfg.MaxConcurrentJobs),
		resultsCh:     make(chan jobResult, 64),
		done:          make(chan struct{}),
		shipAccum:     make(map[string]float64),
		shipEmconHigh: make(map[string]float64),
		lastOrders:    make(map[string]map[string]any),
	}
}

// Step is called once per tick from the tick executor (§4.1 step (a)). It
// first moves job results that landed asynchronously in resultsCh into the
// action queue (drainResultsNonBlocking), then advances cadence
// accumulators and launches any due jobs; DrainActions hands the queued
// actions to the tick executor.
func (o *Orchestrator) Step(w *sim.World, simTime, dt float64) {
	o.drainResultsNonBlocking()

	o.fleetAccum += dt
	if o.fleetAlertT > 0 {
		o.fleetAlertT -= dt
		if o.fleetAlertT <= 0 {
			o.fleetAlert = false
		}
	}
	if anyRecentHighConfidenceContact(w, o.Cfg.FleetTriggerConf) {
		o.fleetAlert = true
		o.fleetAlertT = o.fleetCadence()
	}

	if o.fleetAccum >= o.fleetCadence() {
		o.fleetAccum = 0
		o.launchFleetJob(w, simTime)
	}

	for id, s := range w.Ships {
		if s.Side != sim.SideRed {
			continue
		}
		o.shipAccum[id] += dt

		rangeToBlue := nearestBlueRange(w, s)
		emconHigh := w.FleetIntent.EMCON.RadioDiscipline == "restricted" && rangeToBlue <= o.Cfg.ShipAlertRangeM
		if emconHigh {
			o.shipEmconHigh[id] += dt
		} else {
			o.shipEmconHigh[id] = 0
		}
		alert := !s.ActivePing.Ready() || o.shipEmconHigh[id] >= sim.ShipAlertEMCONSustainedS

		cadence := o.Cfg.ShipCadenceS
		if alert {
			cadence = o.Cfg.ShipAlertCadenceS
		}
		if o.shipAccum[id] >= cadence {
			o.shipAccum[id] = 0
			o.launchShipJob(w, id, simTime, alert)
		}
	}
}

func (o *Orchestrator) fleetCadence() float64 {
	if o.fleetAlert {
		return o.Cfg.FleetAlertCadenceS
	}
	return o.Cfg.FleetCadenceS
}

func anyRecentHighConfidenceContact(w *sim.World, threshold float64) bool {
	for _, e := range w.Contacts.Recent(20) {
		reporter := w.Ships[e.ReporterID]
		if reporter != nil && reporter.Side == sim.SideRed && e.Confidence >= threshold {
			return true
		}
	}
	return false
}

func nearestBlueRange(w *sim.World, s *sim.Ship) float64 {
	best := 1e18
	for _, b := range w.Ships {
		if b.Side != sim.SideBlue {
			continue
		}
		r := rangeMeters(s.Kin.X, s.Kin.Y, b.Kin.X, b.Kin.Y)
		if r < best {
			best = r
		}
	}
	return best
}

// launchFleetJob builds the fleet summary, calls the fleet engine under a
// bounded timeout, normalizes the result, and pushes a validated
// set_fleet_intent action (or records an errored run).
func (o *Orchestrator) launchFleetJob(w *sim.World, simTime float64) {
	if !o.sem.TryAcquire(1) {
		return
	}
	summary := BuildFleetSummary(w)
	mission := w.Mission
	intentNotes := append([]sim.IntentNote{}, w.FleetIntent.Notes...)
	shipIDs := make([]string, 0)
	for id, s := range w.Ships {
		if s.Side == sim.SideRed {
			shipIDs = append(shipIDs, id)
		}
	}
	speedLimits := map[string]float64{}
	if mission != nil {
		speedLimits = mission.SpeedLimits
	}
	hullBySide := make(map[string]float64, len(shipIDs))
	for _, id := range shipIDs {
		hullBySide[id] = w.Ships[id].Hull.MaxSpeed
	}

	go func() {
		defer o.sem.Release(1)
		ctx, cancel := o.jobContext()
		defer cancel()
		t0 := time.Now()
		raw, err := o.FleetEngine.ProposeFleetIntent(ctx, summary)
		metrics.AIJobDuration.WithLabelValues("fleet").Observe(time.Since(t0).Seconds())
		dur := time.Since(t0).Milliseconds()
		rec := engine.AIRunRecord{Kind: "fleet", Engine: o.FleetEngine.Name(), SimTime: simTime, DurationMs: dur}
		if err != nil {
			metrics.AIJobErrorsTotal.WithLabelValues("fleet").Inc()
			rec.OK = false
			rec.Error = err.Error()
			o.resultsCh <- jobResult{record: rec}
			return
		}
		intent := normalizeFleetIntent(raw, shipIDs, mission, speedLimits, hullBySide, intentNotes)
		rec.OK = true
		rec.Summary = intent.Summary
		action := engine.ValidatedAction{Tool: "set_fleet_intent", Arguments: map[string]any{"__intent": intent}, Source: "agent"}
		o.resultsCh <- jobResult{action: &action, record: rec}
	}()
}

// launchShipJob builds the ship summary, invokes the ship engine, and
// validates the returned tool call; unknown tools fall back to
// intent-derived navigation (§4.9's validation & fallback rules).
func (o *Orchestrator) launchShipJob(w *sim.World, shipID string, simTime float64, alert bool) {
	if !o.sem.TryAcquire(1) {
		return
	}
	s := w.Ships[shipID]
	others := w.ShipsBySide(oppositeSide(s.Side))
	localContacts := passiveContactsFor(s, others)
	contactsHistory := w.Contacts.Recent(sim.ContactHistoryRingSize)
	summary := BuildShipSummary(w, shipID, localContacts, contactsHistory, alert, o.getLastOrders(shipID))

	go func() {
		defer o.sem.Release(1)
		ctx, cancel := o.jobContext()
		defer cancel()
		t0 := time.Now()
		raw, err := o.ShipEngine.ProposeShipTool(ctx, summary)
		metrics.AIJobDuration.WithLabelValues("ship").Observe(time.Since(t0).Seconds())
		dur := time.Since(t0).Milliseconds()
		rec := engine.AIRunRecord{Kind: "ship", ShipID: shipID, Engine: o.ShipEngine.Name(), SimTime: simTime, DurationMs: dur}
		if err != nil {
			metrics.AIJobErrorsTotal.WithLabelValues("ship").Inc()
			rec.OK = false
			rec.Error = err.Error()
			o.resultsCh <- jobResult{record: rec}
			return
		}

		tool, _ := raw["tool"].(string)
		args, _ := raw["arguments"].(map[string]any)
		runSummary, _ := raw["summary"].(string)
		rec.Summary = runSummary

		if !validShipTool(s, tool) {
			heading, speedKn, depthM, ok := engine.IntentDerivedNav(w, s, alert)
			if !ok {
				rec.OK = false
				rec.Error = "unknown tool and no intent-derived fallback available"
				o.resultsCh <- jobResult{record: rec}
				return
			}
			metrics.AIJobFallbacksTotal.WithLabelValues(shipID).Inc()
			rec.OK = true
			rec.Error = "fallback: intent-derived navigation (unsupported tool)"
			action := engine.ValidatedAction{
				ShipID: shipID, Tool: "set_nav", Source: "intent_fallback",
				Arguments: map[string]any{"heading": heading, "speed_kn": speedKn, "depth_m": depthM},
			}
			o.resultsCh <- jobResult{action: &action, record: rec}
			return
		}

		rec.OK = true
		action := engine.ValidatedAction{ShipID: shipID, Tool: tool, Arguments: args, Source: "agent"}
		o.resultsCh <- jobResult{action: &action, record: rec}
	}()
}

func validShipTool(s *sim.Ship, tool string) bool {
	switch tool {
	case "set_nav":
		return s.Capabilities.CanSetNav
	case "fire_torpedo", "launch_torpedo_quick":
		return s.Capabilities.HasTorpedoes
	case "drop_depth_charges":
		return s.Capabilities.HasDepthCharges
	case "deploy_countermeasure":
		return len(s.Capabilities.Countermeasures) > 0
	default:
		return false
	}
}

func oppositeSide(s sim.Side) sim.Side {
	if s == sim.SideBlue {
		return sim.SideRed
	}
	return sim.SideBlue
}

// passiveContactsFor is a minimal local re-derivation of bearing-only
// contacts for the ship summary; the authoritative per-tick contact list
// lives in engine.PassiveContacts, computed once per tick on the tick
// thread. This duplicate keeps ai/ decoupled from engine's noise/sonar
// internals: it applies only a 20 km range gate and reports the true
// bearing, with no baffles, bearing noise or sonar-health check.
func passiveContactsFor(s *sim.Ship, others []*sim.Ship) []sim.TelemetryContact {
	out := make([]sim.TelemetryContact, 0, len(others))
	for _, o := range others {
		rngM := rangeMeters(s.Kin.X, s.Kin.Y, o.Kin.X, o.Kin.Y)
		if rngM > 20000 {
			continue
		}
		brg := bearingDegrees(s.Kin.X, s.Kin.Y, o.Kin.X, o.Kin.Y)
		out = append(out, sim.TelemetryContact{ID: o.ID, Bearing: round1(brg), BearingKnown: true})
	}
	return out
}

// drainResultsNonBlocking pulls every currently-ready job result into the
// orchestrator's bounded ring/queue without blocking the tick.
func (o *Orchestrator) drainResultsNonBlocking() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for {
		select {
		case r := <-o.resultsCh:
			o.recentRuns = append(o.recentRuns, r.record)
			if len(o.recentRuns) > sim.RecentRunsRingSize {
				o.recentRuns = o.recentRuns[len(o.recentRuns)-sim.RecentRunsRingSize:]
			}
			if r.action != nil {
				o.actionQueue = append(o.actionQueue, *r.action)
				if r.action.ShipID != "" {
					o.lastOrders[r.action.ShipID] = r.action.Arguments
				}
			}
		default:
			return
		}
	}
}

func (o *Orchestrator) getLastOrders(shipID string) map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastOrders[shipID]
}

// DrainActions returns and clears all validated actions queued since the
// last call (§4.1's "the loop's next pass applies it").
func (o *Orchestrator) DrainActions() []engine.ValidatedAction {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.actionQueue
	o.actionQueue = nil
	return out
}

// RecentRuns returns a snapshot of the bounded recent-runs ring, surfaced
// on the fleet telemetry topic (§4.11).
func (o *Orchestrator) RecentRuns() []engine.AIRunRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]engine.AIRunRecord, len(o.recentRuns))
	copy(out, o.recentRuns)
	return out
}

// jobContext derives a per-job context bounded by both the configured HTTP
// timeout and the orchestrator's own Stop() signal, so calling Stop() while
// a fleet/ship engine call is in flight cancels the outstanding HTTP
// request instead of leaking the goroutine until its timeout elapses.
// Combining the two done-only signals is a plain two-case select;
// channerics.NewTicker/OrDone/Merge all need at least one data channel to
// carry, so engine.Run's tick ticker is where this package actually
// reaches for channerics (see DESIGN.md).
func (o *Orchestrator) jobContext() (context.Context, context.CancelFunc) {
	parent, cancelParent := context.WithCancel(context.Background())
	go func() {
		select {
		case <-o.done:
			cancelParent()
		case <-parent.Done():
		}
	}()
	ctx, cancel := context.WithTimeout(parent, o.Cfg.HTTPTimeout)
	return ctx, func() { cancel(); cancelParent() }
}

// Stop cancels any in-flight job contexts derived from jobContext.
func (o *Orchestrator) Stop() {
	close(o.done)
}
