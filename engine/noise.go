package engine

import (
	"math"
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// sumDB performs the linear-sum dB aggregation 10*log10(sum(10^(L/10))),
// grounded on original_source/sim/noise.py _sum_db.
func sumDB(levels []float64) float64 {
	if len(levels) == 0 {
		return 0.0
	}
	lin := 0.0
	for _, l := range levels {
		lin += math.Pow(10.0, l/10.0)
	}
	return 10.0 * math.Log10(math.Max(1e-12, lin))
}

type impulse struct {
	levelDB float64
	ttlS    float64
}

// NoiseEngine aggregates per-station noise contributions from sustained
// sources and TTL'd impulses (§4.5), grounded on
// original_source/sim/noise.py NoiseEngine.
type NoiseEngine struct {
	impulses map[sim.Station][]impulse
	lastDCCount int
}

func NewNoiseEngine() *NoiseEngine {
	return &NoiseEngine{
		impulses: map[sim.Station][]impulse{
			sim.StationHelm: nil, sim.StationSonar: nil,
			sim.StationWeapons: nil, sim.StationEngineering: nil,
		},
	}
}

// AddImpulse registers a transient noise contribution that decays after
// ttlS seconds (e.g. cavitation spikes, depth-charge detonation).
func (n *NoiseEngine) AddImpulse(station sim.Station, levelDB, ttlS float64) {
	if ttlS < 0.05 {
		ttlS = 0.05
	}
	n.impulses[station] = append(n.impulses[station], impulse{levelDB: levelDB, ttlS: ttlS})
}

func (n *NoiseEngine) tickImpulses(dt float64) map[sim.Station]float64 {
	out := make(map[sim.Station]float64, 4)
	for st, lst := range n.impulses {
		next := lst[:0:0]
		levels := make([]float64, 0, len(lst))
		for _, im := range lst {
			ttl2 := im.ttlS - dt
			if ttl2 > 0 {
				next = append(next, impulse{levelDB: im.levelDB, ttlS: ttl2})
				levels = append(levels, im.levelDB)
			}
		}
		n.impulses[st] = next
		out[st] = sumDB(levels)
	}
	return out
}

// StationNoise holds the total and per-station dB for one ship's tick.
type StationNoise struct {
	Helm, Sonar, Weapons, Engineering, Total float64
}

// taskStageMultiplier maps a maintenance stage to its noise multiplier.
func taskStageMultiplier(stage sim.TaskStage) float64 {
	switch stage {
	case sim.StageFailing:
		return 1.25
	case sim.StageFailed:
		return 1.5
	default:
		return 1.0
	}
}

var maintBaseByStation = map[sim.Station]float64{
	sim.StationHelm: 60.0, sim.StationSonar: 58.0,
	sim.StationWeapons: 64.0, sim.StationEngineering: 66.0,
}

// Step computes this tick's per-station and total noise for one ship,
// given its active maintenance tasks and the number of its live depth
// charges observed this tick (§4.5).
func (n *NoiseEngine) Step(s *sim.Ship, tasks map[sim.Station][]*sim.MaintenanceTask, newDepthCharges int, dt float64, rng *rand.Rand) StationNoise {
	sustained := map[sim.Station][]float64{
		sim.StationHelm: nil, sim.StationSonar: nil,
		sim.StationWeapons: nil, sim.StationEngineering: nil,
	}

	maxSpeed := math.Max(1.0, s.Hull.MaxSpeed)
	speedFrac := clamp(s.Kin.Speed/maxSpeed, 0, 1)
	sustained[sim.StationHelm] = append(sustained[sim.StationHelm], 50.0+25.0*math.Pow(speedFrac, 1.2))

	maxMW := math.Max(1.0, s.Reactor.MaxMW)
	mwFrac := clamp(s.Reactor.OutputMW/maxMW, 0, 1)
	sustained[sim.StationEngineering] = append(sustained[sim.StationEngineering], 55.0+23.0*math.Pow(mwFrac, 1.1))

	if s.PeriscopeRaised {
		sustained[sim.StationSonar] = append(sustained[sim.StationSonar], sim.NoiseMastDB)
	}
	if s.RadioRaised {
		sustained[sim.StationSonar] = append(sustained[sim.StationSonar], sim.NoiseMastDB)
	}
	if s.PumpsOn {
		sustained[sim.StationEngineering] = append(sustained[sim.StationEngineering], sim.NoisePumpDB)
	}

	for i := range s.Weapons.Tubes {
		t := &s.Weapons.Tubes[i]
		if t.TimerS > 0 && t.NextState != nil {
			switch *t.NextState {
			case sim.TubeLoaded:
				sustained[sim.StationWeapons] = append(sustained[sim.StationWeapons], sim.NoiseTubeLoadDB)
			case sim.TubeFlooded:
				sustained[sim.StationWeapons] = append(sustained[sim.StationWeapons], sim.NoiseTubeFloodDB)
			case sim.TubeDoorsOpen:
				sustained[sim.StationWeapons] = append(sustained[sim.StationWeapons], sim.NoiseTubeDoorsDB)
			}
		}
	}

	for station, list := range tasks {
		base := maintBaseByStation[station]
		for _, task := range list {
			sustained[station] = append(sustained[station], base*taskStageMultiplier(task.Stage))
		}
	}

	// newDepthCharges is the count of this ship's live (unexploded) charges;
	// only growth since the previous tick adds an impulse.
	added := newDepthCharges - n.lastDCCount
	n.lastDCCount = newDepthCharges
	for i := 0; i < added; i++ {
		n.AddImpulse(sim.StationWeapons, sim.NoiseDepthChargeDB, sim.NoiseDepthChargeTTLS)
	}

	impulseLevels := n.tickImpulses(dt)
	stationLevels := make(map[sim.Station]float64, 4)
	for _, st := range []sim.Station{sim.StationHelm, sim.StationSonar, sim.StationWeapons, sim.StationEngineering} {
		sustainedDB := sumDB(sustained[st])
		if impulseLevels[st] > 0 {
			stationLevels[st] = sumDB([]float64{sustainedDB, impulseLevels[st]})
		} else {
			stationLevels[st] = sustainedDB
		}
		if stationLevels[st] > 0 {
			stationLevels[st] = math.Max(0, stationLevels[st]+(rng.Float64()*2-1)*sim.NoiseJitterDB)
		}
	}

	total := sumDB([]float64{
		stationLevels[sim.StationHelm], stationLevels[sim.StationSonar],
		stationLevels[sim.StationWeapons], stationLevels[sim.StationEngineering],
	})

	return StationNoise{
		Helm: stationLevels[sim.StationHelm], Sonar: stationLevels[sim.StationSonar],
		Weapons: stationLevels[sim.StationWeapons], Engineering: stationLevels[sim.StationEngineering],
		Total: total,
	}
}

// DynamicSourceLevel recomputes the ship's radiated source level curve
// from a speed-scaled base plus the station noise total, per §4.5.
func DynamicSourceLevel(s *sim.Ship, noise StationNoise) float64 {
	maxSpeed := math.Max(1.0, s.Hull.MaxSpeed)
	speedFrac := clamp(s.Kin.Speed/maxSpeed, 0, 1)
	base := 110.0 + 20.0*speedFrac
	return sumDB([]float64{base, noise.Total * 0.1})
}
