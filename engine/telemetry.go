package engine

import (
	"math"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// round1 rounds a float to one decimal place, used throughout telemetry
// to keep frames compact (§4.10's "rounded to 1 decimal place").
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// OwnshipFrame is the base payload shared by every station topic (§4.11).
type OwnshipFrame struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Depth      float64 `json:"depth_m"`
	Heading    float64 `json:"heading_deg"`
	Speed      float64 `json:"speed_kn"`
	Cavitation bool    `json:"cavitation"`
	NoiseHelm  float64 `json:"noise_helm_db"`
	NoiseSonar float64 `json:"noise_sonar_db"`
	NoiseWeap  float64 `json:"noise_weapons_db"`
	NoiseEng   float64 `json:"noise_engineering_db"`
	NoiseTotal float64 `json:"noise_total_db"`
}

// BaseFrame is shared across all topics for one tick.
type BaseFrame struct {
	TickSeq   uint64         `json:"tick_seq"`
	SimTime   float64        `json:"sim_time"`
	Ownship   OwnshipFrame   `json:"ownship"`
	Transient []sim.TransientEvent `json:"transient_events"`
}

type CaptainFrame struct {
	BaseFrame
	Mission          *sim.MissionBrief    `json:"mission,omitempty"`
	StationStatus    sim.SystemsStatus    `json:"systems"`
	PeriscopeContacts []sim.TelemetryContact `json:"periscope_contacts"`
}

type SonarFrame struct {
	BaseFrame
	PassiveContacts []sim.TelemetryContact `json:"passive_contacts"`
	SyntheticContacts []sim.TelemetryContact `json:"synthetic_contacts"`
	PingResults     []ActivePingReturn   `json:"ping_results,omitempty"`
	PingCooldownS   float64              `json:"ping_cooldown_s"`
}

type WeaponsFrame struct {
	BaseFrame
	Tubes         []sim.Tube `json:"tubes"`
	ConsentGiven  bool       `json:"consent_given"`
}

type EngineeringFrame struct {
	BaseFrame
	Reactor           sim.Reactor           `json:"reactor"`
	Power             sim.PowerAllocations  `json:"power"`
	Systems           sim.SystemsStatus     `json:"systems"`
	Damage            sim.DamageState       `json:"damage"`
	PumpsOn           bool                  `json:"pumps_on"`
	MaintenanceLevels sim.MaintenanceLevels `json:"maintenance_levels"`
	Tasks             map[sim.Station][]*sim.MaintenanceTask `json:"tasks"`
}

type DebugFrame struct {
	BaseFrame
	Ships        map[string]*sim.Ship        `json:"ships"`
	Torpedoes    map[string]*sim.Torpedo     `json:"torpedoes"`
	DepthCharges map[string]*sim.DepthCharge `json:"depth_charges"`
	Flags        DebugFlags                  `json:"debug_flags"`
}

type FleetFrame struct {
	BaseFrame
	FleetIntent *sim.FleetIntent `json:"fleet_intent"`
	History     []sim.FleetIntentRecord `json:"fleet_intent_history"`
	RecentRuns  []AIRunRecord `json:"recent_runs,omitempty"`
}

// buildBaseFrame assembles the shared payload for one ship, grounded on
// §4.11's "each frame shares a base payload".
func buildBaseFrame(w *sim.World, s *sim.Ship, noise StationNoise) BaseFrame {
	return BaseFrame{
		TickSeq: w.TickSeq, SimTime: round1(w.SimTime),
		Ownship: OwnshipFrame{
			ID: s.ID, X: round1(s.Kin.X), Y: round1(s.Kin.Y),
			Depth: round1(s.Kin.Depth), Heading: round1(s.Kin.Heading),
			Speed: round1(s.Kin.Speed), Cavitation: s.Kin.Cavitation,
			NoiseHelm: round1(noise.Helm), NoiseSonar: round1(noise.Sonar),
			NoiseWeap: round1(noise.Weapons), NoiseEng: round1(noise.Engineering),
			NoiseTotal: round1(noise.Total),
		},
		Transient: w.TransientEvents,
	}
}

// BuildFrames produces the full set of §4.11 per-station frames for the
// ownship's tick.
func (c *Core) BuildFrames(s *sim.Ship, noise StationNoise, passive, synthetic, periscope []sim.TelemetryContact, pingResults []ActivePingReturn) map[string]any {
	base := buildBaseFrame(c.World, s, noise)

	captain := CaptainFrame{BaseFrame: base, Mission: c.World.Mission, StationStatus: s.Systems, PeriscopeContacts: periscope}
	sonar := SonarFrame{BaseFrame: base, PassiveContacts: passive, SyntheticContacts: synthetic, PingResults: pingResults, PingCooldownS: round1(s.ActivePing.TimerS)}
	weapons := WeaponsFrame{BaseFrame: base, Tubes: s.Weapons.Tubes, ConsentGiven: c.captainConsent}
	engineering := EngineeringFrame{
		BaseFrame: base, Reactor: s.Reactor, Power: s.Power, Systems: s.Systems,
		Damage: s.Damage, PumpsOn: s.PumpsOn, MaintenanceLevels: s.MaintenanceLevels,
		Tasks: c.World.Tasks,
	}
	debug := DebugFrame{BaseFrame: base, Ships: c.World.Ships, Torpedoes: c.World.Torpedoes, DepthCharges: c.World.DepthCharges, Flags: c.Debug}
	var recentRuns []AIRunRecord
	if c.AI != nil {
		recentRuns = c.AI.RecentRuns()
	}
	fleet := FleetFrame{BaseFrame: base, FleetIntent: c.World.FleetIntent, History: c.World.FleetIntentHistory, RecentRuns: recentRuns}

	return map[string]any{
		"tick:all":         base,
		"tick:captain":     captain,
		"tick:helm":        base,
		"tick:sonar":       sonar,
		"tick:weapons":     weapons,
		"tick:engineering": engineering,
		"tick:debug":       debug,
		"tick:fleet":       fleet,
	}
}

// PublishAll sends every §4.11 topic's frame through the Core's publish
// sink, best-effort (back-pressure is the sink's concern, §5).
func (c *Core) PublishAll(frames map[string]any) {
	if c.Publish == nil {
		return
	}
	for topic, frame := range frames {
		c.Publish(topic, frame)
	}
}
