package sim

// TaskStage is strictly non-decreasing until the task is removed.
type TaskStage string

const (
	StageTask    TaskStage = "task"
	StageFailing TaskStage = "failing"
	StageFailed  TaskStage = "failed"
)

// Station identifies a bridge station that owns maintenance tasks.
type Station string

const (
	StationHelm        Station = "helm"
	StationSonar       Station = "sonar"
	StationWeapons     Station = "weapons"
	StationEngineering Station = "engineering"
)

// MaintenanceTask is a single degrading-subsystem ticket, grounded on
// original_source/models.py MaintenanceTask.
type MaintenanceTask struct {
	ID      string
	Station Station
	System  string // rudder|sonar|tubes|ballast
	Key     string
	Title   string

	Stage           TaskStage
	Progress        float64
	Started         bool
	BaseDeadlineS   float64
	TimeRemainingS  float64
}

// TaskCatalogEntry is a fixed catalog entry a station's spawner draws from.
type TaskCatalogEntry struct {
	Key    string
	Title  string
	System string
}

// TaskCatalog holds 10 entries per station (§4.7).
var TaskCatalog = map[Station][]TaskCatalogEntry{
	StationHelm: {
		{Key: "rudder_actuator_wear", Title: "Rudder actuator wear", System: "rudder"},
		{Key: "rudder_linkage_slack", Title: "Rudder linkage slack", System: "rudder"},
		{Key: "ballast_valve_sticking", Title: "Ballast valve sticking", System: "ballast"},
		{Key: "ballast_trim_pump_noise", Title: "Ballast trim pump noise", System: "ballast"},
		{Key: "helm_gyro_drift", Title: "Helm gyro drift", System: "rudder"},
		{Key: "ballast_tank_vent_leak", Title: "Ballast tank vent leak", System: "ballast"},
		{Key: "rudder_hydraulic_pressure_low", Title: "Rudder hydraulic pressure low", System: "rudder"},
		{Key: "ballast_blow_manifold_clog", Title: "Ballast blow manifold clog", System: "ballast"},
		{Key: "rudder_feedback_sensor_fault", Title: "Rudder feedback sensor fault", System: "rudder"},
		{Key: "ballast_compensating_tank_imbalance", Title: "Ballast compensating tank imbalance", System: "ballast"},
	},
	StationSonar: {
		{Key: "hydrophone_array_noise", Title: "Hydrophone array noise", System: "sonar"},
		{Key: "sonar_processor_overheat", Title: "Sonar processor overheat", System: "sonar"},
		{Key: "towed_array_strain", Title: "Towed array strain", System: "sonar"},
		{Key: "bearing_deviation_calibration", Title: "Bearing deviation calibration drift", System: "sonar"},
		{Key: "sonar_display_flicker", Title: "Sonar display flicker", System: "sonar"},
		{Key: "active_transducer_fouling", Title: "Active transducer fouling", System: "sonar"},
		{Key: "sonar_cable_chafing", Title: "Sonar cable chafing", System: "sonar"},
		{Key: "passive_gain_control_fault", Title: "Passive gain control fault", System: "sonar"},
		{Key: "sonar_cooling_pump_wear", Title: "Sonar cooling pump wear", System: "sonar"},
		{Key: "array_baffle_seal_leak", Title: "Array baffle seal leak", System: "sonar"},
	},
	StationWeapons: {
		{Key: "tube_door_seal_wear", Title: "Tube door seal wear", System: "tubes"},
		{Key: "tube_flood_valve_sticking", Title: "Tube flood valve sticking", System: "tubes"},
		{Key: "torpedo_rack_alignment", Title: "Torpedo rack alignment", System: "tubes"},
		{Key: "tube_impulse_charge_fault", Title: "Tube impulse charge fault", System: "tubes"},
		{Key: "breech_mechanism_wear", Title: "Breech mechanism wear", System: "tubes"},
		{Key: "tube_drain_pump_noise", Title: "Tube drain pump noise", System: "tubes"},
		{Key: "weapons_interlock_fault", Title: "Weapons interlock fault", System: "tubes"},
		{Key: "tube_pressure_equalizer_leak", Title: "Tube pressure equalizer leak", System: "tubes"},
		{Key: "torpedo_gyro_spin_up_fault", Title: "Torpedo gyro spin-up fault", System: "tubes"},
		{Key: "tube_muzzle_door_hinge_wear", Title: "Tube muzzle door hinge wear", System: "tubes"},
	},
	StationEngineering: {
		{Key: "reactor_coolant_pump_wear", Title: "Reactor coolant pump wear", System: "rudder"},
		{Key: "steam_generator_fouling", Title: "Steam generator fouling", System: "ballast"},
		{Key: "battery_cell_degradation", Title: "Battery cell degradation", System: "ballast"},
		{Key: "turbine_bearing_wear", Title: "Turbine bearing wear", System: "rudder"},
		{Key: "electrical_bus_arcing", Title: "Electrical bus arcing", System: "ballast"},
		{Key: "condenser_vacuum_loss", Title: "Condenser vacuum loss", System: "rudder"},
		{Key: "reactor_control_rod_drift", Title: "Reactor control rod drift", System: "ballast"},
		{Key: "feedwater_pump_cavitation", Title: "Feedwater pump cavitation", System: "rudder"},
		{Key: "shaft_seal_leak", Title: "Shaft seal leak", System: "ballast"},
		{Key: "emergency_diesel_generator_fault", Title: "Emergency diesel generator fault", System: "rudder"},
	},
}
