package engine

import (
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/metrics"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// PublishFunc sends a named telemetry frame; out of scope per spec.md §1,
// modeled only at this interface boundary (the real implementation lives
// in transport/).
type PublishFunc func(topic string, frame any)

// EventSink persists an append-only event; best-effort, failures must not
// block the tick (§7 kind 5).
type EventSink interface {
	Append(eventType string, payload map[string]any)
}

// ValidatedAction is one orchestrator tool call that has passed validation
// and is queued for application on the tick thread (§4.9, §5).
type ValidatedAction struct {
	ShipID    string
	Tool      string
	Arguments map[string]any
	Source    string // "agent" | "intent_fallback"
	Error     string // non-empty for §7 kind 4 fallback/errored runs
}

// AIOrchestrator is the subset of the orchestrator's surface the tick
// executor drives; the concrete implementation lives in ai.Orchestrator.
// Kept as an interface here so engine never imports ai (layering: sim ->
// engine, sim -> ai; main.go wires the two together).
type AIOrchestrator interface {
	Step(w *sim.World, simTime, dt float64)
	DrainActions() []ValidatedAction
	RecentRuns() []AIRunRecord
}

// AIRunRecord is one entry in the orchestrator's bounded "recent runs"
// ring, surfaced verbatim on the fleet telemetry topic (§4.9, §4.11).
type AIRunRecord struct {
	Kind      string // "fleet" | "ship"
	ShipID    string
	Engine    string
	OK        bool
	Error     string
	Summary   string
	SimTime   float64
	DurationMs int64
}

// DebugFlags are toggles set by the debug.* command topics.
type DebugFlags struct {
	DisableMaintenanceSpawns bool
	ForceVisualPlayer100     bool
	ForceVisualEnemy100      bool
	EnemyStatic              bool
}

// Settings is the subset of the flat configuration object the tick
// executor consults directly (most settings only matter to config/ and
// ai/; see config.Config for the full flat object, §6).
type Settings struct {
	TickHz                 int
	RequireCaptainConsent  bool
	UseAIOrchestrator      bool
	SnapshotS               float64
	FirstTaskDelayS         float64
	MaintSpawnScale         float64
}

func DefaultSettings() Settings {
	return Settings{
		TickHz: sim.DefaultTickHz, RequireCaptainConsent: true,
		SnapshotS: 2.0, FirstTaskDelayS: 30.0, MaintSpawnScale: 1.0,
	}
}

// Core is the authoritative simulation engine: one World plus the
// per-ship subsystem state the tick loop steps (§4.1). It owns the only
// mutation path into the World; everything else communicates through
// queues (§5).
type Core struct {
	World      *sim.World
	OwnshipID  string
	Settings   Settings
	Debug      DebugFlags
	RNG        *rand.Rand
	Publish    PublishFunc
	Events     EventSink
	AI         AIOrchestrator

	noise        map[string]*NoiseEngine
	maintenance  map[string]*MaintenanceScheduler
	grid         *SpatialGrid
	captainConsent bool
	visualScanAccum float64

	pendingCommands chan Command
}

// NewCore constructs a Core bound to an existing World, grounded on the
// teacher's NewGameState constructor pattern.
func NewCore(w *sim.World, ownshipID string, settings Settings, publish PublishFunc, events EventSink, ai AIOrchestrator, seed int64) *Core {
	c := &Core{
		World:     w,
		OwnshipID: ownshipID,
		Settings:  settings,
		RNG:       rand.New(rand.NewSource(seed)),
		Publish:   publish,
		Events:    events,
		AI:        ai,
		noise:       make(map[string]*NoiseEngine),
		maintenance: make(map[string]*MaintenanceScheduler),
		grid:        NewSpatialGrid(),
		pendingCommands: make(chan Command, 256),
	}
	for id := range w.Ships {
		c.noise[id] = NewNoiseEngine()
		c.maintenance[id] = NewMaintenanceScheduler(settings.MaintSpawnScale, settings.FirstTaskDelayS)
	}
	return c
}

// SubmitCommand enqueues a command for processing before the next tick
// (§4.1, §5: commands are applied FIFO before the tick body runs).
func (c *Core) SubmitCommand(cmd Command) {
	select {
	case c.pendingCommands <- cmd:
	default:
		// Command queue full: drop silently rather than block the caller;
		// commands are not telemetry so this should never happen in
		// practice at the bounded size chosen.
	}
	metrics.CommandQueueDepth.Set(float64(len(c.pendingCommands)))
}

func (c *Core) ownship() *sim.Ship {
	return c.World.Ships[c.OwnshipID]
}

func (c *Core) drainCommands() {
	for {
		select {
		case cmd := <-c.pendingCommands:
			err := c.HandleCommand(cmd.Topic, cmd.Payload)
			if cmd.Reply != nil {
				select {
				case cmd.Reply <- err:
				default:
				}
			}
		default:
			return
		}
	}
}
