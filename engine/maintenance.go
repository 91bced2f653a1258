package engine

import (
	"math"
	"math/rand"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// MaintenanceScheduler advances progress on started tasks, escalates
// overdue tasks through stage task→failing→failed, and spawns new tasks
// per an independent per-station respawn timer (§4.7).
type MaintenanceScheduler struct {
	respawnTimers map[sim.Station]float64
	scale         float64
	firstDelayS   float64
	elapsed       float64
}

func NewMaintenanceScheduler(scale, firstDelayS float64) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		respawnTimers: map[sim.Station]float64{
			sim.StationHelm: firstDelayS, sim.StationSonar: firstDelayS,
			sim.StationWeapons: firstDelayS, sim.StationEngineering: firstDelayS,
		},
		scale:       scale,
		firstDelayS: firstDelayS,
	}
}

// Step runs one tick of the scheduler for a ship's task lists: progresses
// started tasks by station power, escalates overdue tasks, spawns new
// tasks on respawn, and reapplies aggregated penalties. disableSpawn
// suppresses new-task spawning (debug.maintenance.spawns toggle).
func (m *MaintenanceScheduler) Step(s *sim.Ship, tasks map[sim.Station][]*sim.MaintenanceTask, dt float64, rng *rand.Rand, disableSpawn bool) {
	m.elapsed += dt
	powerByStation := map[sim.Station]float64{
		sim.StationHelm: s.Power.Helm, sim.StationSonar: s.Power.Sonar,
		sim.StationWeapons: s.Power.Weapons, sim.StationEngineering: s.Power.Engineering,
	}

	for station, list := range tasks {
		remaining := list[:0]
		for _, task := range list {
			if task.Started {
				task.Progress += sim.MaintProgressRateBase * powerByStation[station] * dt
				if task.Progress >= 1.0 {
					s.MaintenanceLevels[task.System] = math.Min(1.0, s.MaintenanceLevels[task.System]+sim.MaintCompleteLevelGain)
					continue // task completed, drop from list
				}
			}
			task.TimeRemainingS -= dt
			if task.TimeRemainingS <= 0 {
				switch task.Stage {
				case sim.StageTask:
					task.Stage = sim.StageFailing
					task.TimeRemainingS = task.BaseDeadlineS
					s.MaintenanceLevels[task.System] = math.Max(0, s.MaintenanceLevels[task.System]-sim.MaintFailingLevelLoss)
				case sim.StageFailing:
					task.Stage = sim.StageFailed
					s.MaintenanceLevels[task.System] = math.Max(0, s.MaintenanceLevels[task.System]-sim.MaintFailedLevelLoss)
				case sim.StageFailed:
					// stays, no further timeout penalty
				}
			}
			remaining = append(remaining, task)
		}
		tasks[station] = remaining
	}

	if !disableSpawn {
		for _, station := range []sim.Station{sim.StationHelm, sim.StationSonar, sim.StationWeapons, sim.StationEngineering} {
			m.respawnTimers[station] -= dt
			if m.respawnTimers[station] <= 0 {
				tasks[station] = append(tasks[station], m.spawnTask(station, rng))
				interval := (sim.MaintRespawnMinS + rng.Float64()*(sim.MaintRespawnMaxS-sim.MaintRespawnMinS)) / math.Max(0.01, m.scale)
				m.respawnTimers[station] = interval
			}
		}
	}

	ReapplyAggregatedPenalties(s, tasks)
}

func (m *MaintenanceScheduler) spawnTask(station sim.Station, rng *rand.Rand) *sim.MaintenanceTask {
	catalog := sim.TaskCatalog[station]
	entry := catalog[rng.Intn(len(catalog))]
	deadline := sim.MaintTaskDeadlineMinS + rng.Float64()*(sim.MaintTaskDeadlineMaxS-sim.MaintTaskDeadlineMinS)
	return &sim.MaintenanceTask{
		ID: sim.NewID("task"), Station: station, System: entry.System,
		Key: entry.Key, Title: entry.Title, Stage: sim.StageTask,
		BaseDeadlineS: deadline, TimeRemainingS: deadline,
	}
}

// ReapplyAggregatedPenalties recomputes the worst active stage per station
// and applies its effects, resetting to baseline when no tasks remain for
// that station. This is what ensures completing a task while a failed
// task remains for the same station does not revert the penalty (§4.7).
func ReapplyAggregatedPenalties(s *sim.Ship, tasks map[sim.Station][]*sim.MaintenanceTask) {
	for _, station := range []sim.Station{sim.StationHelm, sim.StationSonar, sim.StationWeapons, sim.StationEngineering} {
		worst := worstStage(tasks[station])
		applyStationPenalty(s, station, worst)
	}
}

func worstStage(list []*sim.MaintenanceTask) sim.TaskStage {
	worst := sim.TaskStage("")
	rank := map[sim.TaskStage]int{sim.StageTask: 1, sim.StageFailing: 2, sim.StageFailed: 3}
	for _, t := range list {
		if rank[t.Stage] > rank[worst] {
			worst = t.Stage
		}
	}
	return worst
}

func applyStationPenalty(s *sim.Ship, station sim.Station, stage sim.TaskStage) {
	switch station {
	case sim.StationHelm:
		switch stage {
		case sim.StageFailed:
			s.Hull.TurnRateMax = 0
		case sim.StageFailing:
			s.Hull.TurnRateMax = 0
		default:
			s.Hull.TurnRateMax = sim.ShipCatalog[s.Class].DefaultHull.TurnRateMax
		}
	case sim.StationSonar:
		switch stage {
		case sim.StageFailed, sim.StageFailing:
			s.Systems.SonarOK = false
		default:
			s.Systems.SonarOK = s.MaintenanceLevels["sonar"] > sim.MaintOkThreshold
		}
	case sim.StationWeapons:
		switch stage {
		case sim.StageFailed, sim.StageFailing:
			s.Systems.TubesOK = false
		default:
			s.Systems.TubesOK = s.MaintenanceLevels["tubes"] > sim.MaintOkThreshold
		}
	case sim.StationEngineering:
		// engineering-station tasks degrade rudder/ballast per the catalog's
		// system tagging; nothing additional to aggregate here beyond the
		// per-system maintenance-level decay already applied in StepEngineering.
	}
}
