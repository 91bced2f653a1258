package engine

import (
	"math"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// clamp mirrors original_source/sim/physics.py's clamp helper.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeHeading brings a heading into [0,360).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 360.0)
	if h < 0 {
		h += 360.0
	}
	return h
}

// shortestDelta returns the signed shortest angular delta from a to b, in
// degrees, in [-180,180).
func shortestDelta(a, b float64) float64 {
	d := math.Mod(b-a+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d - 180.0
}

// cavitationThresholdKn mirrors original_source/sim/physics.py
// cavitation_speed_for_depth.
func cavitationThresholdKn(depth float64) float64 {
	return clamp(0.08*depth+5.0, 5.0, 30.0)
}

// StepKinematics integrates one ship's pose by dt seconds per spec §4.2.
// Inputs are the ship's ordered heading/speed/depth setpoints already
// stored on s.Kin; ballastBoost indicates pumps are actively boosting
// depth-change rate.
func StepKinematics(s *sim.Ship, dt float64, ballastBoost bool) {
	hullDamageFactor := math.Max(0.1, 1.0-s.Damage.Hull)
	reactorCappedSpeed := s.Hull.MaxSpeed * (s.Reactor.OutputMW / s.Reactor.MaxMW) * hullDamageFactor

	targetSpeed := clamp(s.Kin.OrderedSpeed, 0, reactorCappedSpeed)

	damageAccelFactor := math.Max(0.2, hullDamageFactor)
	maxDeltaSpeed := s.Hull.AccelMax * damageAccelFactor * dt
	if targetSpeed > s.Kin.Speed {
		s.Kin.Speed = math.Min(targetSpeed, s.Kin.Speed+maxDeltaSpeed)
	} else if targetSpeed < s.Kin.Speed {
		s.Kin.Speed = math.Max(targetSpeed, s.Kin.Speed-maxDeltaSpeed)
	}

	if s.Systems.RudderOK {
		delta := shortestDelta(s.Kin.Heading, s.Kin.OrderedHeading)
		maxDeltaHeading := s.Hull.TurnRateMax * hullDamageFactor * dt
		if delta > maxDeltaHeading {
			delta = maxDeltaHeading
		} else if delta < -maxDeltaHeading {
			delta = -maxDeltaHeading
		}
		s.Kin.TurnRate = delta / math.Max(dt, 1e-9)
		s.Kin.Heading = normalizeHeading(s.Kin.Heading + delta)
	} else {
		s.Kin.TurnRate = 0
	}

	var baseDepthRate float64
	switch {
	case ballastBoost:
		baseDepthRate = 6.0
	case s.Systems.BallastOK:
		baseDepthRate = 3.0
	default:
		baseDepthRate = 0.5
	}
	orderedDepth := clamp(s.Kin.OrderedDepth, 0, s.Hull.MaxDepth)
	maxDeltaDepth := baseDepthRate * hullDamageFactor * dt
	if orderedDepth > s.Kin.Depth {
		s.Kin.Depth = math.Min(orderedDepth, s.Kin.Depth+maxDeltaDepth)
	} else if orderedDepth < s.Kin.Depth {
		s.Kin.Depth = math.Max(orderedDepth, s.Kin.Depth-maxDeltaDepth)
	}
	s.Kin.DepthRate = (clamp(orderedDepth, 0, s.Hull.MaxDepth) - s.Kin.Depth) / math.Max(dt, 1e-9)
	s.Kin.Depth = clamp(s.Kin.Depth, 0, s.Hull.MaxDepth)

	headingRad := s.Kin.Heading * math.Pi / 180.0
	speedMPS := s.Kin.Speed * sim.KnotsToMetersPerSecond
	s.Kin.X += math.Sin(headingRad) * speedMPS * dt
	s.Kin.Y += math.Cos(headingRad) * speedMPS * dt

	s.Kin.Cavitation = s.Kin.Speed > cavitationThresholdKn(s.Kin.Depth)
}

// BearingDegrees returns the compass bearing from (x0,y0) to (x1,y1) using
// the atan2(dx,dy) convention resolved in spec.md's Open Questions.
func BearingDegrees(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return normalizeHeading(math.Atan2(dx, dy) * 180.0 / math.Pi)
}

// RangeMeters returns the 2D planar distance between two points.
func RangeMeters(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return math.Hypot(dx, dy)
}
