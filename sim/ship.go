package sim

import "sync"

// Kinematics holds a ship's pose and motion state. Position is in meters,
// east (x) / north (y); heading is degrees, 0=N, 90=E.
type Kinematics struct {
	X, Y      float64
	Depth     float64
	Heading   float64
	Speed     float64 // knots
	TurnRate  float64
	Accel     float64
	DepthRate float64

	// Ordered setpoints, mutated by command dispatch and by applied AI
	// set_nav / fleet-intent actions.
	OrderedHeading float64
	OrderedSpeed   float64
	OrderedDepth   float64

	Cavitation bool
}

// Hull carries a ship class's physical limits.
type Hull struct {
	MaxDepth    float64
	CrushDepth  float64
	MaxSpeed    float64
	QuietSpeed  float64
	TurnRateMax float64
	AccelMax    float64
	DecelMax    float64
}

// Acoustics carries source-level curves and accumulated degradation
// penalties applied by maintenance/damage.
type Acoustics struct {
	SourceLevelBySpeed map[int]float64
	BroadbandSig       float64
	ThermoclineOn      bool

	BearingNoiseExtra       float64
	PassiveSNRPenaltyDB     float64
	HydroBearingBiasDeg     float64
	ActiveRangeNoiseAddM    float64
	ActiveBearingNoiseExtra float64
	ThermoclineBias         float64

	LastSNRDB          float64
	LastDetectability  float64
	DynamicSourceLevel float64
}

// PowerAllocations are non-negative fractions; invariant Σ ≤ 1.0.
type PowerAllocations struct {
	Helm        float64
	Weapons     float64
	Sonar       float64
	Engineering float64
}

// Sum returns the total allocated fraction.
func (p PowerAllocations) Sum() float64 {
	return p.Helm + p.Weapons + p.Sonar + p.Engineering
}

// SystemsStatus are booleans. RudderOK, BallastOK, SonarOK and TubesOK are
// re-derived each tick from maintenance levels (a level at or below
// MaintOkThreshold forces the flag false); RadioOK and PeriscopeOK are not
// re-derived and keep their construction value.
type SystemsStatus struct {
	RudderOK    bool
	BallastOK   bool
	SonarOK     bool
	RadioOK     bool
	PeriscopeOK bool
	TubesOK     bool
}

// MaintenanceLevels maps a subsystem name to a level in [0,1].
type MaintenanceLevels map[string]float64

func DefaultMaintenanceLevels() MaintenanceLevels {
	return MaintenanceLevels{
		"rudder":    1.0,
		"ballast":   1.0,
		"sonar":     1.0,
		"radio":     1.0,
		"periscope": 1.0,
		"tubes":     1.0,
	}
}

// Reactor models power generation and battery reserve.
type Reactor struct {
	OutputMW   float64
	MaxMW      float64
	Scrammed   bool
	BatteryPct float64
}

// DamageState tracks hull integrity and flooding.
type DamageState struct {
	Hull         float64 // 0 undamaged .. 1 destroyed
	Sensors      float64
	Propulsion   float64
	FloodingRate float64
}

// Ship is the single authoritative entity owned exclusively by the World.
// All fields are mutated only by the tick executor or by command dispatch
// running on the tick thread (see spec §5).
type Ship struct {
	mu sync.RWMutex

	ID    string
	Side  Side
	Class ShipClass

	Kin       Kinematics
	Hull      Hull
	Acoustics Acoustics
	Weapons   Weapons
	Reactor   Reactor
	Damage    DamageState
	Power     PowerAllocations
	Systems   SystemsStatus

	MaintenanceLevels MaintenanceLevels
	Capabilities      Capabilities

	ActivePing ActivePingState

	// Mast/antenna exposure, mutated by captain.periscope.raise /
	// captain.radio.raise commands; affects passive source-level bonuses.
	PeriscopeRaised bool
	RadioRaised     bool
	PumpsOn         bool

	// VisualMemory maps observed-target id -> memory record, populated by
	// this ship acting as an observer in visual detection.
	VisualMemory map[string]*VisualContactMemory
}

// NewShip constructs a ship from its class catalog entry.
func NewShip(id string, side Side, class ShipClass) *Ship {
	def := ShipCatalog[class]
	return &Ship{
		ID:    id,
		Side:  side,
		Class: class,
		Hull:  def.DefaultHull,
		Acoustics: Acoustics{
			SourceLevelBySpeed: copySourceLevels(def.DefaultAcoustic.SourceLevelBySpeed),
			ThermoclineOn:      def.DefaultAcoustic.ThermoclineOn,
		},
		Weapons: def.DefaultWeapons(),
		Reactor: Reactor{OutputMW: 60.0, MaxMW: 100.0, BatteryPct: 100.0},
		Power:   PowerAllocations{Helm: 0.25, Weapons: 0.25, Sonar: 0.25, Engineering: 0.25},
		Systems: SystemsStatus{
			RudderOK: true, BallastOK: true, SonarOK: true,
			RadioOK: true, PeriscopeOK: true, TubesOK: true,
		},
		MaintenanceLevels: DefaultMaintenanceLevels(),
		Capabilities:      def.Capabilities,
		ActivePing:        ActivePingState{CooldownS: ActivePingCooldownS},
		VisualMemory:      make(map[string]*VisualContactMemory),
	}
}

func copySourceLevels(src map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Lock/Unlock/RLock/RUnlock expose the ship's mutex to callers that need to
// hold it across a multi-field read or write (the tick executor holds the
// World lock for the tick body after the command drain and AI action
// application, and does not need these; command dispatch
// handlers use them when mutating a single ship outside the tick body).
func (s *Ship) Lock()    { s.mu.Lock() }
func (s *Ship) Unlock()  { s.mu.Unlock() }
func (s *Ship) RLock()   { s.mu.RLock() }
func (s *Ship) RUnlock() { s.mu.RUnlock() }
