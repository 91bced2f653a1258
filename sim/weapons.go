package sim

// TubeState is the tagged-variant state of a torpedo tube (§9 design
// note): Empty | Loaded(Weapon) | Flooded(Weapon) | DoorsOpen(Weapon),
// replacing the source's "empty tube with stale weapon" representation.
type TubeState int

const (
	TubeEmpty TubeState = iota
	TubeLoaded
	TubeFlooded
	TubeDoorsOpen
)

func (s TubeState) String() string {
	switch s {
	case TubeLoaded:
		return "Loaded"
	case TubeFlooded:
		return "Flooded"
	case TubeDoorsOpen:
		return "DoorsOpen"
	default:
		return "Empty"
	}
}

// TorpedoDef describes the weapon payload a loaded tube carries.
type TorpedoDef struct {
	Name          string
	Speed         float64
	SeekerConeDeg float64
	SeekerRangeM  float64
	EnableRangeM  float64
	MaxRunTimeS   float64
}

func DefaultTorpedoDef() TorpedoDef {
	return TorpedoDef{
		Name: "Mk48", Speed: 45.0, SeekerConeDeg: 35.0,
		SeekerRangeM: 4000.0, EnableRangeM: 800.0, MaxRunTimeS: 600.0,
	}
}

// Tube is a single torpedo tube. Weapon is non-nil from the start of a
// load (while the tube is still Empty with the load timer running) through
// Loaded/Flooded/DoorsOpen. NextState is nil whenever TimerS == 0 (invariant).
type Tube struct {
	Idx       int
	State     TubeState
	Weapon    *TorpedoDef
	TimerS    float64
	NextState *TubeState
}

// Weapons is a ship's weapon suite: tubes plus depth-charge inventory.
type Weapons struct {
	TubeCount            int
	TorpedoesStored      int
	ReloadTimeS          float64
	FloodTimeS           float64
	DoorsTimeS           float64
	Tubes                []Tube
	TimePenaltyMultiplier float64

	DepthChargesStored     int
	DepthChargeCooldownS   float64
	DepthChargeCooldownT   float64

	QuickLaunchCooldownS float64
	QuickLaunchTimerS    float64
}

// NewWeapons builds a weapons suite with tubeCount tubes, grounded on
// original_source/models.py WeaponsSuite defaults.
func NewWeapons(tubeCount, torpedoesStored int, reloadS, floodS, doorsS float64, depthCharges int, dcCooldownS float64) Weapons {
	tubes := make([]Tube, tubeCount)
	for i := range tubes {
		tubes[i] = Tube{Idx: i + 1, State: TubeEmpty}
	}
	return Weapons{
		TubeCount:             tubeCount,
		TorpedoesStored:       torpedoesStored,
		ReloadTimeS:           reloadS,
		FloodTimeS:            floodS,
		DoorsTimeS:            doorsS,
		Tubes:                 tubes,
		TimePenaltyMultiplier: 1.0,
		DepthChargesStored:    depthCharges,
		DepthChargeCooldownS:  dcCooldownS,
	}
}

// Tube looks up a tube by its 1-based index.
func (w *Weapons) Tube(idx int) *Tube {
	for i := range w.Tubes {
		if w.Tubes[i].Idx == idx {
			return &w.Tubes[i]
		}
	}
	return nil
}

// ActivePingState is a per-ship active sonar cooldown timer.
type ActivePingState struct {
	CooldownS float64
	TimerS    float64
}

// Ready reports whether a new ping may be started.
func (a ActivePingState) Ready() bool { return a.TimerS <= 0 }

// Start begins the cooldown window.
func (a *ActivePingState) Start() { a.TimerS = a.CooldownS }

// Step counts the cooldown timer down by dt, floored at 0.
func (a *ActivePingState) Step(dt float64) {
	if a.TimerS > 0 {
		a.TimerS -= dt
		if a.TimerS < 0 {
			a.TimerS = 0
		}
	}
}
