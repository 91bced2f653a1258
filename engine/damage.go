package engine

import (
	"math"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// StepDamage decays flooding rate by pump effect, grounded on
// original_source/sim/damage.py step_damage.
func StepDamage(s *sim.Ship, dt, pumpEffect float64) {
	if s.Damage.FloodingRate > 0 {
		s.Damage.FloodingRate = math.Max(0, s.Damage.FloodingRate-pumpEffect*dt)
	}
}

// StepEngineering applies reactor/battery/power-split dynamics per §4.8,
// grounded on original_source/sim/damage.py step_engineering plus the
// sonar/weapons/engineering MW-derived effects the spec adds.
func StepEngineering(s *sim.Ship, dt float64) {
	if s.Reactor.Scrammed {
		s.Reactor.OutputMW = math.Min(s.Reactor.OutputMW, 10.0)
		speedFrac := clamp(s.Kin.Speed/math.Max(1.0, s.Hull.MaxSpeed), 0, 1)
		s.Reactor.BatteryPct = math.Max(0, s.Reactor.BatteryPct-(1.0*speedFrac/60.0)*dt)
		if s.Reactor.BatteryPct <= 0 {
			s.Reactor.OutputMW = 0
		}
	}

	totalMW := s.Reactor.OutputMW

	sonarMW := totalMW * s.Power.Sonar
	_ = sonarMW // unused; applyPowerDerivedSensorPenalties reads s.Power.Sonar directly

	weaponsMW := totalMW * s.Power.Weapons
	weaponsShare := clamp(s.Power.Weapons, 0.01, 1.0)
	weaponsDamageFactor := math.Max(0.1, 1.0-s.Damage.Hull)
	s.Weapons.TimePenaltyMultiplier = 1.0 / (weaponsShare * weaponsDamageFactor)
	_ = weaponsMW

	engineeringShare := s.Power.Engineering
	if engineeringShare > 0.1 {
		for k, v := range s.MaintenanceLevels {
			s.MaintenanceLevels[k] = math.Min(1.0, v+0.1*dt)
		}
	} else {
		for k, v := range s.MaintenanceLevels {
			s.MaintenanceLevels[k] = math.Max(0, v-0.01*dt)
		}
	}
	applyMaintenanceSystemFlags(s)
	applyPowerDerivedSensorPenalties(s, sonarMW, totalMW)
}

// applyMaintenanceSystemFlags re-derives the systems-status booleans from
// maintenance levels (level > MaintOkThreshold), spec §3/§4.7.
func applyMaintenanceSystemFlags(s *sim.Ship) {
	s.Systems.RudderOK = s.MaintenanceLevels["rudder"] > sim.MaintOkThreshold
	s.Systems.BallastOK = s.MaintenanceLevels["ballast"] > sim.MaintOkThreshold
	s.Systems.SonarOK = s.MaintenanceLevels["sonar"] > sim.MaintOkThreshold
	s.Systems.TubesOK = s.MaintenanceLevels["tubes"] > sim.MaintOkThreshold
}

// applyPowerDerivedSensorPenalties scales the ship's passive/active sonar
// degradation adders inversely with sonar MW share, per §4.8's "Sonar MW:
// contributes to hull-damage sensor penalties".
func applyPowerDerivedSensorPenalties(s *sim.Ship, sonarMW, totalMW float64) {
	share := s.Power.Sonar
	deficiency := clamp(1.0-share*2, 0, 1) // full penalty relief at share >= 0.5
	s.Acoustics.PassiveSNRPenaltyDB = deficiency * 10.0
	s.Acoustics.BearingNoiseExtra = deficiency * 5.0
	s.Acoustics.ActiveRangeNoiseAddM = deficiency * 50.0
	s.Acoustics.ActiveBearingNoiseExtra = deficiency * 2.0
}
