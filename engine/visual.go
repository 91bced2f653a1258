package engine

import (
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

var classVisualMultiplier = map[sim.ShipClass]float64{
	sim.ClassSSN:       1.0,
	sim.ClassConvoy:    1.3,
	sim.ClassDestroyer: 1.1,
}

// VisualScan runs one visual-detection pass for an observer against a set
// of candidate targets, grounded on spec §4.6 (no teacher/original
// equivalent; Netrek has no periscope-style detection model).
// forceDetect implements the debug.visual.*_100 override (probability 1.0).
func VisualScan(observer *sim.Ship, candidates []*sim.Ship, simTime float64, rng *rand.Rand, forceDetect bool) []sim.TelemetryContact {
	if observer.Kin.Depth > sim.VisualMaxObserverZ {
		return nil
	}
	out := make([]sim.TelemetryContact, 0, len(candidates))
	for _, target := range candidates {
		if target.ID == observer.ID {
			continue
		}
		if target.Kin.Depth > sim.VisualMaxTargetDepth {
			continue
		}
		rngM := RangeMeters(observer.Kin.X, observer.Kin.Y, target.Kin.X, target.Kin.Y)
		if rngM > sim.VisualMaxRangeM {
			continue
		}

		base := 0.0
		if rngM < sim.VisualMaxRangeM {
			base = 1.0 - rngM/sim.VisualMaxRangeM
		}
		if base < 0 {
			base = 0
		}
		mult := classVisualMultiplier[target.Class]
		if mult == 0 {
			mult = 1.0
		}
		p := base * mult

		mem := observer.VisualMemory[target.ID]
		if mem != nil {
			bonus := float64(mem.DetectionCount) * sim.VisualMemoryBonus
			if bonus > sim.VisualMemoryCap {
				bonus = sim.VisualMemoryCap
			}
			p += bonus
		}
		if p > sim.VisualDetectCap {
			p = sim.VisualDetectCap
		}

		roll := rng.Float64()
		detectedNow := forceDetect || roll < p

		carryOver := mem != nil && (simTime-mem.LastSeenTS) <= sim.VisualCarryOverS && rngM <= sim.VisualMaxRangeM

		if detectedNow {
			if mem == nil {
				mem = &sim.VisualContactMemory{TargetID: target.ID}
				observer.VisualMemory[target.ID] = mem
			}
			mem.LastSeenTS = simTime
			mem.DetectionCount++
			mem.LastConfidence = p
		}

		if detectedNow || carryOver {
			brg := BearingDegrees(observer.Kin.X, observer.Kin.Y, target.Kin.X, target.Kin.Y)
			confidence := p
			if mem != nil {
				confidence = mem.LastConfidence
			}
			out = append(out, sim.TelemetryContact{
				ID: target.ID, Bearing: brg, BearingKnown: true,
				Range: rngM, RangeKnown: true, Strength: p,
				ClassifiedAs: string(target.Class), Confidence: confidence,
			})
		}
	}
	return out
}

// GCVisualMemory drops memory entries older than VisualMemoryGCS (§3).
func GCVisualMemory(observer *sim.Ship, simTime float64) {
	for id, mem := range observer.VisualMemory {
		if simTime-mem.LastSeenTS > sim.VisualMemoryGCS {
			delete(observer.VisualMemory, id)
		}
	}
}
