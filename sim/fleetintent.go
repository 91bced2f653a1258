package sim

// ShipObjective is one RED ship's assignment within the current FleetIntent.
type ShipObjective struct {
	Destination [2]float64
	SpeedKn     *float64
	Goal        string
}

// EMCON carries fleet-wide emissions-control posture.
type EMCON struct {
	ActivePingAllowed bool
	RadioDiscipline   string
}

// IntentNote is a free-text annotation, optionally tied to a specific ship.
type IntentNote struct {
	ShipID *string
	Text   string
}

// FleetIntent is the process-wide, singleton plan for the RED fleet,
// mutated only by the orchestrator's apply step (§3, §4.9).
type FleetIntent struct {
	Objectives map[string]ShipObjective
	EMCON      EMCON
	Summary    string
	Notes      []IntentNote
}

func NewFleetIntent() *FleetIntent {
	return &FleetIntent{
		Objectives: make(map[string]ShipObjective),
		EMCON:      EMCON{ActivePingAllowed: true, RadioDiscipline: "normal"},
	}
}

// FleetIntentRecord is one entry in the bounded apply history (last 8),
// grounded on §4.10's "last applied FleetIntent (hash, body, one-line
// summary) plus a bounded history".
type FleetIntentRecord struct {
	Hash    string
	Body    *FleetIntent
	Summary string
	TickSeq uint64
}

// MissionBrief is the top-level scenario description, stored in
// World.Mission (set directly by the scenario builder), replacing the
// source's dynamically attached _mission_brief (§9 design note).
type MissionBrief struct {
	Objective      string
	TargetWaypoint *[2]float64
	Convoy         []string
	Objectives     map[string]string // side -> objective text
	EMCON          EMCON
	SpeedLimits    map[string]float64
	SuccessCriteria []string
	Behavior       map[string]string // ship id -> behavior text
}
