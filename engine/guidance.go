package engine

import (
	"math"
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// TorpedoEventFunc receives a transient event name and payload, mirroring
// the original's on_event callback (original_source/sim/weapons.py).
type TorpedoEventFunc func(eventType string, payload map[string]any)

// absAngleDiff returns the absolute smallest angular difference in degrees.
func absAngleDiff(a, b float64) float64 {
	d := math.Mod(b-a+540.0, 360.0) - 180.0
	return math.Abs(d)
}

// nearestTarget finds the nearest opposing ship within the torpedo's
// seeker cone and range (environment-derated by thermocline), mirroring
// _nearest_target.
func nearestTarget(t *sim.Torpedo, w *sim.World, ownThermocline bool) *sim.Ship {
	var nearest *sim.Ship
	nearestD := math.Inf(1)
	envMult := 1.0
	if ownThermocline {
		envMult = 0.6
	}
	for _, ship := range w.Ships {
		if ship.Side == t.Side {
			continue
		}
		rng := RangeMeters(t.X, t.Y, ship.Kin.X, ship.Kin.Y)
		if rng > t.SeekerRangeM*envMult {
			continue
		}
		bearing := BearingDegrees(t.X, t.Y, ship.Kin.X, ship.Kin.Y)
		if absAngleDiff(t.Heading, bearing) <= t.SeekerConeD/2 && rng < nearestD {
			nearestD = rng
			nearest = ship
		}
	}
	return nearest
}

// StepTorpedo advances one torpedo by dt: arming, pre/post-arm safety,
// proximity-fuze detonation, and proportional-navigation guidance
// (original_source/sim/weapons.py step_torpedo, spec §4.3).
func StepTorpedo(t *sim.Torpedo, w *sim.World, dt float64, shooter *sim.Ship, rng *rand.Rand, emit TorpedoEventFunc) {
	if t.Exploded {
		return
	}
	if t.MaxRunTimeS > 0 && t.RunTimeS >= t.MaxRunTimeS {
		t.Exploded = true
		return
	}

	if shooter != nil {
		distFromShooter := RangeMeters(t.X, t.Y, shooter.Kin.X, shooter.Kin.Y)
		if !t.Armed && distFromShooter >= t.EnableRangeM {
			t.Armed = true
			emit("torpedo.armed", map[string]any{"id": t.ID})
		}
	} else {
		t.Armed = true
	}

	if t.SpoofedTimerS > 0 {
		t.SpoofedTimerS -= dt
		if t.SpoofedTimerS < 0 {
			t.SpoofedTimerS = 0
		}
	}

	var ownRange float64 = math.Inf(1)
	if shooter != nil {
		ownRange = RangeMeters(t.X, t.Y, shooter.Kin.X, shooter.Kin.Y)
	}

	if !t.Armed {
		if shooter != nil && ownRange < sim.TorpedoPreArmSafeRangeM {
			bearingToOwn := BearingDegrees(t.X, t.Y, shooter.Kin.X, shooter.Kin.Y)
			off := absAngleDiff(t.Heading, bearingToOwn)
			if off < sim.TorpedoPreArmSafeConeD {
				away := normalizeHeading(bearingToOwn + 180.0)
				dh := shortestDelta(t.Heading, away)
				maxTurn := sim.TorpedoPreArmSlewDegS * dt
				if dh > maxTurn {
					dh = maxTurn
				} else if dh < -maxTurn {
					dh = -maxTurn
				}
				t.Heading = normalizeHeading(t.Heading + dh)
			}
		}
	} else {
		if shooter != nil && ownRange < sim.TorpedoPostArmSafeRngM && t.RunTimeS > sim.TorpedoPostArmMinRunS {
			emit("torpedo.self_destruct", map[string]any{"id": t.ID, "reason": "ownship_proximity", "range_m": ownRange})
			t.RunTimeS = t.MaxRunTimeS + 1.0
			t.Exploded = true
			return
		}
	}

	for _, ship := range w.Ships {
		if ship.Side == t.Side {
			continue
		}
		rng2 := RangeMeters(t.X, t.Y, ship.Kin.X, ship.Kin.Y)
		if t.Armed && rng2 < sim.TorpedoProximityFuzeM {
			ship.Damage.Hull = math.Min(1.0, ship.Damage.Hull+sim.TorpedoHullDamageHit)
			ship.Damage.FloodingRate = math.Min(10.0, ship.Damage.FloodingRate+sim.TorpedoFloodingRateHit)
			emit("torpedo.detonated", map[string]any{"id": t.ID, "target": ship.ID, "range_m": rng2})
			t.Exploded = true
			return
		}
	}

	ownThermocline := shooter != nil && shooter.Acoustics.ThermoclineOn
	target := nearestTarget(t, w, ownThermocline)
	if target != nil && t.Armed {
		const spoofProb = 0.02
		if t.SpoofedTimerS == 0 && rng.Float64() < spoofProb {
			t.SpoofedTimerS = 3.0
			emit("torpedo.spoofed", map[string]any{"id": t.ID, "seconds": t.SpoofedTimerS})
		}

		los := BearingDegrees(t.X, t.Y, target.Kin.X, target.Kin.Y)
		var maxTurnRate float64
		var commandedTurnRate float64
		if !t.PrevLOSValid {
			dh := shortestDelta(t.Heading, los)
			if t.SpoofedTimerS > 0 {
				dh += (rng.Float64()*2 - 1) * sim.TorpedoSpoofJitterDegS
				maxTurnRate = sim.TorpedoSpoofMaxTurnDegS
			} else {
				maxTurnRate = sim.TorpedoNormalMaxTurnDeg
			}
			commandedTurnRate = dh
		} else {
			losRate := shortestDelta(t.PrevLOSDeg, los) / math.Max(1e-6, dt)
			commandedTurnRate = t.ProNavN*losRate + sim.TorpedoProportionalKErr*shortestDelta(t.Heading, los)
			if t.SpoofedTimerS > 0 {
				commandedTurnRate += (rng.Float64()*2 - 1) * sim.TorpedoSpoofJitterDegS
				maxTurnRate = sim.TorpedoSpoofMaxTurnDegS
			} else {
				maxTurnRate = sim.TorpedoNormalMaxTurnDeg
			}
		}
		t.PrevLOSDeg = los
		t.PrevLOSValid = true

		if commandedTurnRate > maxTurnRate {
			commandedTurnRate = maxTurnRate
		} else if commandedTurnRate < -maxTurnRate {
			commandedTurnRate = -maxTurnRate
		}
		t.Heading = normalizeHeading(t.Heading + commandedTurnRate*dt)
	}

	mps := t.Speed * sim.KnotsToMetersPerSecond
	headingRad := t.Heading * math.Pi / 180.0
	t.X += math.Sin(headingRad) * mps * dt
	t.Y += math.Cos(headingRad) * mps * dt
	t.RunTimeS += dt
}

// StepDepthCharge sinks one depth charge and, on reaching its target depth
// (within ±1m), applies spherical blast damage and marks it exploded
// (original_source/sim/weapons.py step_depth_charge).
func StepDepthCharge(dc *sim.DepthCharge, w *sim.World, dt float64, emit TorpedoEventFunc) {
	if dc.Exploded {
		return
	}
	dc.Depth += dc.SinkRateMPS * dt
	if math.Abs(dc.Depth-dc.TargetDepth) <= sim.DepthChargeArriveTolM {
		for _, ship := range w.Ships {
			if ship.Side == dc.Side {
				continue
			}
			dx := ship.Kin.X - dc.X
			dy := ship.Kin.Y - dc.Y
			dz := ship.Kin.Depth - dc.Depth
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			switch {
			case dist <= sim.DepthChargeBlastNearM:
				ship.Damage.Hull = math.Min(1.0, ship.Damage.Hull+sim.DepthChargeNearHull)
				ship.Damage.FloodingRate = math.Min(10.0, ship.Damage.FloodingRate+sim.DepthChargeNearFlooding)
				emit("depth_charge.hit", map[string]any{"target": ship.ID, "range_m": dist})
			case dist <= sim.DepthChargeBlastFarM:
				ship.Damage.Hull = math.Min(1.0, ship.Damage.Hull+sim.DepthChargeFarHull)
				ship.Damage.FloodingRate = math.Min(10.0, ship.Damage.FloodingRate+sim.DepthChargeFarFlooding)
				emit("depth_charge.near", map[string]any{"target": ship.ID, "range_m": dist})
			}
		}
		dc.Exploded = true
		emit("depth_charge.detonated", map[string]any{"depth_m": dc.Depth, "x": dc.X, "y": dc.Y})
	}
}
