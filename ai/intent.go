package ai

import (
	"fmt"
	"math"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// normalizeFleetIntent converts the engine's raw JSON response into a
// well-formed sim.FleetIntent, applying every §4.9 normalization rule:
// every RED ship present in objectives, speed/goal defaults filled,
// EMCON defaults present, notes non-empty, and legacy engagement_rules
// fields dropped.
func normalizeFleetIntent(raw map[string]any, shipIDs []string, mission *sim.MissionBrief, speedLimits map[string]float64, hullMaxSpeed map[string]float64, existingNotes []sim.IntentNote) *sim.FleetIntent {
	intent := sim.NewFleetIntent()

	if rawObjectives, ok := raw["objectives"].(map[string]any); ok {
		for id, v := range rawObjectives {
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			so := sim.ShipObjective{}
			if dest, ok := obj["destination"].([]any); ok && len(dest) == 2 {
				x, _ := dest[0].(float64)
				y, _ := dest[1].(float64)
				so.Destination = [2]float64{x, y}
			}
			if goal, ok := obj["goal"].(string); ok {
				so.Goal = goal
			}
			if speed, ok := obj["speed_kn"].(float64); ok {
				so.SpeedKn = &speed
			}
			intent.Objectives[id] = so
		}
	}

	if em, ok := raw["emcon"].(map[string]any); ok {
		if v, ok := em["active_ping_allowed"].(bool); ok {
			intent.EMCON.ActivePingAllowed = v
		}
		if v, ok := em["radio_discipline"].(string); ok {
			intent.EMCON.RadioDiscipline = v
		}
	}

	if s, ok := raw["summary"].(string); ok {
		intent.Summary = s
	}

	if rawNotes, ok := raw["notes"].([]any); ok {
		for _, n := range rawNotes {
			nm, ok := n.(map[string]any)
			if !ok {
				continue
			}
			note := sim.IntentNote{}
			if sid, ok := nm["ship_id"].(string); ok && sid != "" {
				id := sid
				note.ShipID = &id
			}
			if text, ok := nm["text"].(string); ok {
				note.Text = text
			}
			intent.Notes = append(intent.Notes, note)
		}
	}

	// Every RED ship must appear in objectives.
	for _, id := range shipIDs {
		if _, present := intent.Objectives[id]; present {
			continue
		}
		dest := [2]float64{0, 0}
		if mission != nil && mission.TargetWaypoint != nil {
			dest = *mission.TargetWaypoint
		}
		intent.Objectives[id] = sim.ShipObjective{
			Destination: dest,
			Goal:        fmt.Sprintf("Proceed toward the designated waypoint and await further orders."),
		}
	}

	// Fill a missing goal with the default sentence, and missing speed_kn
	// from mission speed limits, else the conservative default fraction of
	// max speed.
	for id, obj := range intent.Objectives {
		if obj.Goal == "" {
			obj.Goal = "Proceed toward the designated waypoint and await further orders."
		}
		if obj.SpeedKn == nil {
			maxSpeed := hullMaxSpeed[id]
			var v float64
			if limit, ok := speedLimits[id]; ok {
				v = limit
			} else {
				v = math.Max(4.0, math.Min(maxSpeed, 0.6*maxSpeed))
			}
			obj.SpeedKn = &v
		}
		intent.Objectives[id] = obj
	}

	if intent.EMCON.RadioDiscipline == "" {
		intent.EMCON.RadioDiscipline = "restricted"
	}

	if len(intent.Notes) == 0 {
		intent.Notes = append(intent.Notes, sim.IntentNote{Text: "No additional intel; maintain current posture."})
	}

	if intent.Summary == "" {
		intent.Summary = "RED fleet proceeding per assigned objectives."
	}

	return intent
}
