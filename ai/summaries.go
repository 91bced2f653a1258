package ai

import (
	"regexp"
	"strconv"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// BuildFleetSummary assembles the RED-fleet-commander information
// boundary, exposing only per-ship ground truth for RED ships plus an
// enemy_belief fused strictly from sensor outputs (§4.10). regexp is
// stdlib; no pack example ships a dedicated text-extraction library, and
// this summary's only pattern need ([x,y] extraction) is covered by it.
func BuildFleetSummary(w *sim.World) map[string]any {
	ships := make(map[string]any, len(w.Ships))
	for id, s := range w.Ships {
		if s.Side != sim.SideRed {
			continue
		}
		ships[id] = map[string]any{
			"id": id, "class": string(classLabel(s.Class)),
			"x": round1(s.Kin.X), "y": round1(s.Kin.Y), "depth_m": round1(s.Kin.Depth),
			"heading_deg": round1(s.Kin.Heading), "speed_kn": round1(s.Kin.Speed),
			"hull_damage": round1(s.Damage.Hull),
			"weapons_ready": s.Systems.TubesOK,
			"detectability": round1(s.Acoustics.LastDetectability),
			"sensors":       map[string]any{"sonar_ok": s.Systems.SonarOK, "has_active_sonar": s.Capabilities.HasActiveSonar},
		}
	}

	belief := fuseEnemyBelief(w)

	var mission map[string]any
	if w.Mission != nil {
		mission = map[string]any{
			"objective": w.Mission.Objective, "target_waypoint": w.Mission.TargetWaypoint,
			"convoy": w.Mission.Convoy, "objectives": w.Mission.Objectives,
			"emcon": w.Mission.EMCON, "speed_limits": w.Mission.SpeedLimits,
			"success_criteria": w.Mission.SuccessCriteria, "behavior": w.Mission.Behavior,
		}
	}

	var lastIntent map[string]any
	if len(w.FleetIntentHistory) > 0 {
		rec := w.FleetIntentHistory[len(w.FleetIntentHistory)-1]
		lastIntent = map[string]any{"hash": rec.Hash, "summary": rec.Summary, "tick_seq": rec.TickSeq}
	}

	contacts := w.Contacts.Recent(sim.ContactHistoryRingSize)

	return map[string]any{
		"red_ships":     ships,
		"enemy_belief":  belief,
		"mission":       mission,
		"last_intent":   lastIntent,
		"intent_history_count": len(w.FleetIntentHistory),
		"contact_history": contacts,
	}
}

// fuseEnemyBelief builds the bearing-only passive + ranged visual picture
// ALL RED observers have accumulated, fused by contact id, never ground
// truth (§4.10's "never ground-truth" invariant).
func fuseEnemyBelief(w *sim.World) []map[string]any {
	fused := make(map[string]map[string]any)
	for _, e := range w.Contacts.Recent(sim.ContactHistoryRingSize) {
		reporter := w.Ships[e.ReporterID]
		if reporter == nil || reporter.Side != sim.SideRed {
			continue
		}
		entry, ok := fused[e.TargetID]
		if !ok {
			entry = map[string]any{"id": e.TargetID}
			fused[e.TargetID] = entry
		}
		if e.BearingKnown {
			entry["bearing_deg"] = round1(e.Bearing)
		}
		if e.RangeKnown {
			entry["range_m"] = round1(e.Range)
		}
		entry["classification"] = e.Classification
		entry["confidence"] = round1(e.Confidence)
		entry["sensor"] = string(e.Sensor)
	}
	out := make([]map[string]any, 0, len(fused))
	for _, v := range fused {
		out = append(out, v)
	}
	return out
}

func classLabel(c sim.ShipClass) string { return string(c) }

var bracketPairRe = regexp.MustCompile(`\[\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\]`)

// extractPositionsFromNotes regex-extracts [x,y] pairs from FleetIntent
// notes text, per §4.10's ship_summary "fleet_fused_contacts" derivation.
func extractPositionsFromNotes(notes []sim.IntentNote) [][2]float64 {
	var out [][2]float64
	for _, n := range notes {
		for _, m := range bracketPairRe.FindAllStringSubmatch(n.Text, -1) {
			x, errX := strconv.ParseFloat(m[1], 64)
			y, errY := strconv.ParseFloat(m[2], 64)
			if errX == nil && errY == nil {
				out = append(out, [2]float64{x, y})
			}
		}
	}
	return out
}

// BuildShipSummary assembles the single-RED-ship information boundary
// (§4.10).
func BuildShipSummary(w *sim.World, shipID string, localContacts []sim.TelemetryContact, contactsHistory []sim.ContactEvent, alert bool, lastOrders map[string]any) map[string]any {
	s := w.Ships[shipID]
	if s == nil {
		return nil
	}

	fleetPositions := extractPositionsFromNotes(w.FleetIntent.Notes)
	fused := make([]map[string]any, 0, len(fleetPositions))
	for _, p := range fleetPositions {
		fused = append(fused, map[string]any{
			"x": round1(p[0]), "y": round1(p[1]),
			"bearing_deg": round1(bearingDegrees(s.Kin.X, s.Kin.Y, p[0], p[1])),
			"range_m":     round1(rangeMeters(s.Kin.X, s.Kin.Y, p[0], p[1])),
		})
	}

	histLen := sim.ShipContactHistoryWindow
	if histLen > len(contactsHistory) {
		histLen = len(contactsHistory)
	}

	return map[string]any{
		"self": map[string]any{
			"id": s.ID, "class": classLabel(s.Class),
			"x": round1(s.Kin.X), "y": round1(s.Kin.Y), "depth_m": round1(s.Kin.Depth),
			"heading_deg": round1(s.Kin.Heading), "speed_kn": round1(s.Kin.Speed),
			"hull_damage": round1(s.Damage.Hull),
		},
		"constraints": map[string]any{
			"max_speed_kn": s.Hull.MaxSpeed, "max_depth_m": s.Hull.MaxDepth,
			"turn_rate_max_deg_s": s.Hull.TurnRateMax,
		},
		"weapons": map[string]any{
			"tube_count": s.Weapons.TubeCount, "torpedoes_stored": s.Weapons.TorpedoesStored,
			"countermeasures": s.Capabilities.Countermeasures,
		},
		"capabilities": s.Capabilities,
		"sensors": map[string]any{
			"passive_ok": s.Systems.SonarOK, "has_active": s.Capabilities.HasActiveSonar,
		},
		"contacts":              localContacts,
		"fleet_fused_contacts":  fused,
		"contacts_history":      contactsHistory[len(contactsHistory)-histLen:],
		"orders_last":           lastOrders,
		"fleet_intent":          w.FleetIntent,
		"detected_state":        map[string]any{"alert": alert},
	}
}
