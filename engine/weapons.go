package engine

import (
	"errors"
	"math"
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

var (
	ErrTubesDown        = errors.New("tube system down")
	ErrTubeBusy          = errors.New("tube busy")
	ErrTubeNotFound      = errors.New("tube not found")
	ErrTubeWrongState    = errors.New("tube in wrong state for operation")
	ErrNoTorpedoesLeft   = errors.New("no torpedoes remaining")
	ErrNoCapability      = errors.New("capability not present")
	ErrOnCooldown        = errors.New("system cooling down")
	ErrNoInventory       = errors.New("no inventory remaining")
)

// StepTubes advances every tube's timer by dt, applying the queued
// next-state transition on reaching zero, and counts down the depth-charge
// and quick-launch cooldowns (original_source/sim/weapons.py step_tubes).
func StepTubes(s *sim.Ship, dt float64) {
	ws := &s.Weapons
	if ws.DepthChargeCooldownT > 0 {
		ws.DepthChargeCooldownT -= dt
		if ws.DepthChargeCooldownT < 0 {
			ws.DepthChargeCooldownT = 0
		}
	}
	if ws.QuickLaunchTimerS > 0 {
		ws.QuickLaunchTimerS -= dt
		if ws.QuickLaunchTimerS < 0 {
			ws.QuickLaunchTimerS = 0
		}
	}
	for i := range ws.Tubes {
		t := &ws.Tubes[i]
		if t.TimerS > 0 {
			t.TimerS -= dt
			if t.TimerS < 0 {
				t.TimerS = 0
			}
			if t.TimerS == 0 && t.NextState != nil {
				t.State = *t.NextState
				t.NextState = nil
			}
		}
	}
}

func timePenalty(ws *sim.Weapons) float64 {
	if ws.TimePenaltyMultiplier > 1.0 {
		return ws.TimePenaltyMultiplier
	}
	return 1.0
}

// TryLoadTube loads a weapon into an empty tube.
func TryLoadTube(s *sim.Ship, tubeIdx int, weaponName string) error {
	if !s.Systems.TubesOK {
		return ErrTubesDown
	}
	ws := &s.Weapons
	t := ws.Tube(tubeIdx)
	if t == nil {
		return ErrTubeNotFound
	}
	if t.State != sim.TubeEmpty {
		return ErrTubeWrongState
	}
	if ws.TorpedoesStored <= 0 {
		return ErrNoInventory
	}
	if t.TimerS > 0 {
		return ErrTubeBusy
	}
	def := sim.DefaultTorpedoDef()
	def.Name = weaponName
	t.Weapon = &def
	next := sim.TubeLoaded
	t.NextState = &next
	t.TimerS = ws.ReloadTimeS * timePenalty(ws)
	ws.TorpedoesStored--
	return nil
}

// TryFloodTube transitions a loaded tube to flooded.
func TryFloodTube(s *sim.Ship, tubeIdx int) error {
	if !s.Systems.TubesOK {
		return ErrTubesDown
	}
	ws := &s.Weapons
	t := ws.Tube(tubeIdx)
	if t == nil {
		return ErrTubeNotFound
	}
	if t.State != sim.TubeLoaded {
		return ErrTubeWrongState
	}
	if t.TimerS > 0 {
		return ErrTubeBusy
	}
	next := sim.TubeFlooded
	t.NextState = &next
	t.TimerS = ws.FloodTimeS * timePenalty(ws)
	return nil
}

// TrySetDoors opens or closes a flooded/doors-open tube.
func TrySetDoors(s *sim.Ship, tubeIdx int, open bool) error {
	if !s.Systems.TubesOK {
		return ErrTubesDown
	}
	ws := &s.Weapons
	t := ws.Tube(tubeIdx)
	if t == nil {
		return ErrTubeNotFound
	}
	if t.TimerS > 0 {
		return ErrTubeBusy
	}
	if open && t.State == sim.TubeFlooded {
		next := sim.TubeDoorsOpen
		t.NextState = &next
		t.TimerS = ws.DoorsTimeS * timePenalty(ws)
		return nil
	}
	if !open && t.State == sim.TubeDoorsOpen {
		next := sim.TubeFlooded
		t.NextState = &next
		t.TimerS = ws.DoorsTimeS
		return nil
	}
	return ErrTubeWrongState
}

// TryFire fires a loaded-and-open tube, returning the new torpedo.
func TryFire(s *sim.Ship, tubeIdx int, bearingDeg, runDepth float64, enableRangeM *float64, doctrine sim.GuidanceDoctrine) (*sim.Torpedo, error) {
	ws := &s.Weapons
	t := ws.Tube(tubeIdx)
	if t == nil {
		return nil, ErrTubeNotFound
	}
	if t.State != sim.TubeDoorsOpen || t.Weapon == nil {
		return nil, ErrTubeWrongState
	}
	def := *t.Weapon
	if enableRangeM != nil {
		def.EnableRangeM = *enableRangeM
	}
	if doctrine == "" {
		doctrine = sim.DoctrinePassive
	}
	torp := sim.NewTorpedo(sim.NewID("torpedo"), s.ID, s.Side, def, s.Kin.X, s.Kin.Y, s.Kin.Depth, normalizeHeading(bearingDeg), runDepth, doctrine)
	t.Weapon = nil
	t.State = sim.TubeEmpty
	t.TimerS = 0
	t.NextState = nil
	return torp, nil
}

// TryLaunchTorpedoQuick is the AI-only rapid-launch path that bypasses
// tube preparation (original_source/sim/weapons.py try_launch_torpedo_quick).
func TryLaunchTorpedoQuick(s *sim.Ship, bearingDeg, runDepth float64, enableRangeM *float64, doctrine sim.GuidanceDoctrine) (*sim.Torpedo, error) {
	if !s.Capabilities.HasTorpedoes {
		return nil, ErrNoCapability
	}
	ws := &s.Weapons
	if ws.TorpedoesStored <= 0 {
		return nil, ErrNoTorpedoesLeft
	}
	if ws.QuickLaunchTimerS > 0 {
		return nil, ErrOnCooldown
	}
	def := sim.DefaultTorpedoDef()
	if enableRangeM != nil {
		def.EnableRangeM = *enableRangeM
	} else {
		def.EnableRangeM = sim.QuickLaunchDefaultRange
	}
	if doctrine == "" {
		doctrine = sim.DoctrinePassive
	}
	torp := sim.NewTorpedo(sim.NewID("torpedo"), s.ID, s.Side, def, s.Kin.X, s.Kin.Y, s.Kin.Depth, normalizeHeading(bearingDeg), runDepth, doctrine)
	ws.TorpedoesStored--
	if ws.QuickLaunchCooldownS <= 0 {
		ws.QuickLaunchCooldownS = 5.0
	}
	ws.QuickLaunchTimerS = ws.QuickLaunchCooldownS
	return torp, nil
}

// TryDropDepthCharges spawns up to spreadSize depth charges around a ship
// at random XY offsets (original_source/sim/weapons.py try_drop_depth_charges).
func TryDropDepthCharges(s *sim.Ship, spreadMeters, minDepth, maxDepth float64, spreadSize int, rng *rand.Rand) ([]*sim.DepthCharge, error) {
	if !s.Capabilities.HasDepthCharges {
		return nil, ErrNoCapability
	}
	ws := &s.Weapons
	if ws.DepthChargesStored <= 0 {
		return nil, ErrNoInventory
	}
	if ws.DepthChargeCooldownT > 0 {
		return nil, ErrOnCooldown
	}
	count := spreadSize
	if count > sim.DepthChargeMaxSpread {
		count = sim.DepthChargeMaxSpread
	}
	if count > ws.DepthChargesStored {
		count = ws.DepthChargesStored
	}
	if count < 1 {
		count = 1
	}
	const minDetonationDepth = 15.0
	spawned := make([]*sim.DepthCharge, 0, count)
	for i := 0; i < count; i++ {
		r := rng.Float64() * math.Max(0, spreadMeters)
		theta := rng.Float64() * 2 * math.Pi
		ox := math.Cos(theta) * r
		oy := math.Sin(theta) * r
		span := math.Max(0, maxDepth-minDepth)
		targetDepth := math.Max(minDetonationDepth, minDepth+rng.Float64()*span)
		dc := sim.NewDepthCharge(sim.NewID("dc"), s.ID, s.Side, s.Kin.X+ox, s.Kin.Y+oy, targetDepth)
		dc.Depth = math.Max(0, s.Kin.Depth)
		spawned = append(spawned, dc)
	}
	ws.DepthChargesStored -= count
	ws.DepthChargeCooldownT = ws.DepthChargeCooldownS
	return spawned, nil
}
