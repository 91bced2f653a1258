package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// classificationStrings maps a ship class to the four classification
// tiers used by passive sonar, grounded on spec.md §4.4/§8's S1 scenario
// expectations.
var classificationStrings = map[sim.ShipClass][4]string{
	sim.ClassSSN:       {"Submarine", "SSN?", "Contact?", "Unknown"},
	sim.ClassConvoy:    {"Merchant/Convoy", "Merchant?", "Vessel?", "Unknown"},
	sim.ClassDestroyer: {"Warship", "Destroyer?", "Contact?", "Unknown"},
}

func classify(class sim.ShipClass, detectability, snr float64) string {
	tiers := classificationStrings[class]
	switch {
	case detectability >= 0.8 && snr >= 25:
		return tiers[0]
	case detectability >= 0.6 && snr >= 20:
		return tiers[1]
	case detectability >= 0.4 && snr >= 15:
		return tiers[2]
	default:
		return tiers[3]
	}
}

func nearestSpeedBin(bins map[int]float64, targetSpeed float64) float64 {
	keys := make([]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	bestDelta := math.Abs(float64(best) - math.Abs(targetSpeed))
	for _, k := range keys[1:] {
		d := math.Abs(float64(k) - math.Abs(targetSpeed))
		if d < bestDelta {
			bestDelta = d
			best = k
		}
	}
	return bins[best]
}

func gauss(rng *rand.Rand, mean, sigma float64) float64 {
	return mean + rng.NormFloat64()*sigma
}

// PassiveContacts computes the passive sonar picture for one observer
// ship, grounded on original_source/sim/sonar.py enriched per spec §4.4
// (baffles, surface/mast bonus, thermocline layer attenuation,
// classification thresholds). Returns nil if the observer's sonar is down.
func PassiveContacts(observer *sim.Ship, others []*sim.Ship, rng *rand.Rand) []sim.TelemetryContact {
	if !observer.Systems.SonarOK {
		return nil
	}
	contacts := make([]sim.TelemetryContact, 0, len(others))
	for _, other := range others {
		if other.ID == observer.ID {
			continue
		}
		rngM := RangeMeters(observer.Kin.X, observer.Kin.Y, other.Kin.X, other.Kin.Y)
		brg := BearingDegrees(observer.Kin.X, observer.Kin.Y, other.Kin.X, other.Kin.Y)
		rel := shortestDelta(observer.Kin.Heading, brg)
		if math.Abs(rel) > 180-sim.BafflesDeg/2 {
			continue
		}

		srcLvl := nearestSpeedBin(other.Acoustics.SourceLevelBySpeed, other.Kin.Speed)
		if other.Kin.Depth <= 1.0 {
			srcLvl += sim.SurfaceBonusDB
		}
		if other.PeriscopeRaised || other.RadioRaised {
			srcLvl += 3.0
		}

		layerAtten := 0.0
		if observer.Acoustics.ThermoclineOn {
			layerAtten = sim.ThermoclineLayerAtten
		}
		tl := 20*math.Log10(math.Max(1.0, rngM)) + layerAtten
		snr := math.Max(0, srcLvl-tl-sim.AmbientNoiseDB-observer.Acoustics.PassiveSNRPenaltyDB)
		detectability := clamp(snr/30.0, 0, 1)
		if detectability < sim.DetectabilityGate {
			continue
		}

		sigma := math.Max(1.0, 10.0-0.3*other.Kin.Speed+observer.Acoustics.BearingNoiseExtra)
		noisyBearing := normalizeHeading(gauss(rng, brg, sigma))
		confidence := math.Min(1.0, 1.2*detectability)

		contacts = append(contacts, sim.TelemetryContact{
			ID:              other.ID,
			Bearing:         noisyBearing,
			BearingKnown:    true,
			RangeKnown:      false,
			Strength:        detectability,
			ClassifiedAs:    classify(other.Class, detectability, snr),
			Confidence:      confidence,
			Detectability:   detectability,
			SNRDb:           snr,
			BearingSigmaDeg: sigma,
		})
	}
	return contacts
}

// ActivePingReturn is one contact in an active-sonar ping response.
type ActivePingReturn struct {
	TargetID string
	RangeM   float64
	BearingD float64
	Strength float64
}

// ActivePing computes the active-sonar return set for an observer that has
// just pinged, grounded on original_source/sim/sonar.py active_ping,
// enriched with the task-driven noise adders from spec §4.4/§4.8.
func ActivePing(observer *sim.Ship, others []*sim.Ship, rng *rand.Rand) []ActivePingReturn {
	if !observer.Systems.SonarOK {
		return nil
	}
	out := make([]ActivePingReturn, 0, len(others))
	for _, other := range others {
		if other.ID == observer.ID {
			continue
		}
		rngM := RangeMeters(observer.Kin.X, observer.Kin.Y, other.Kin.X, other.Kin.Y)
		brg := BearingDegrees(observer.Kin.X, observer.Kin.Y, other.Kin.X, other.Kin.Y)
		rngSigma := 0.02*rngM + 5.0 + observer.Acoustics.ActiveRangeNoiseAddM
		brgSigma := 1.5 + observer.Acoustics.ActiveBearingNoiseExtra
		rngNoisy := math.Max(1.0, gauss(rng, rngM, rngSigma))
		brgNoisy := normalizeHeading(gauss(rng, brg, brgSigma))
		strength := clamp(1.0/(1.0+rngNoisy/2000.0), 0, 1)
		out = append(out, ActivePingReturn{TargetID: other.ID, RangeM: rngNoisy, BearingD: brgNoisy, Strength: strength})
	}
	return out
}

// StartActivePing attempts to start an active ping on observer; on
// success it generates counter-detection contacts on every opposing ship
// within CounterDetectRangeM and emits a counterDetected transient event
// on both sides (spec §4.4, scenario S5).
func StartActivePing(w *sim.World, observer *sim.Ship, rng *rand.Rand) error {
	if !observer.ActivePing.Ready() {
		return ErrOnCooldown
	}
	observer.ActivePing.Start()

	for _, other := range w.Ships {
		if other.Side == observer.Side {
			continue
		}
		rngM := RangeMeters(observer.Kin.X, observer.Kin.Y, other.Kin.X, other.Kin.Y)
		if rngM > sim.CounterDetectRangeM {
			continue
		}
		brg := BearingDegrees(other.Kin.X, other.Kin.Y, observer.Kin.X, observer.Kin.Y)
		noisyBrg := normalizeHeading(gauss(rng, brg, sim.CounterDetectBearingSig))
		w.Contacts.Append(sim.ContactEvent{
			TS: w.SimTime, ReporterID: other.ID, TargetID: observer.ID,
			Sensor: sim.SensorCounterDetect, Bearing: noisyBrg, BearingKnown: true,
			RangeKnown: false, Classification: "ENEMY_ACTIVE_SONAR", Confidence: sim.CounterDetectConfidence,
		})
		w.Emit("counterDetected", map[string]any{"observer": observer.ID, "reporter": other.ID})
	}
	return nil
}
