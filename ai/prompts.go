package ai

import "encoding/json"

// Prompt templates are literal text, grounded on
// original_source/sim/ai_engines.py's embedded system/user prompts (§4.9);
// the tool argument names listed are the keys ApplyToolCall reads.

const fleetSystemPrompt = "You are the RED Fleet Commander. Define mid-level FleetIntent that encodes " +
	"strategy and objectives; do not micromanage tactics. Use only the provided summaries; never assume " +
	"ground-truth enemy positions. Coordinates: X east (m), Y north (m). Output ONLY one JSON object (no markdown):\n" +
	"{\n" +
	"  \"objectives\": {\"<ship_id>\": {\"destination\": [x, y], \"speed_kn\": 12, \"goal\": \"one sentence\"}},\n" +
	"  \"emcon\": {\"active_ping_allowed\": false, \"radio_discipline\": \"restricted\"},\n" +
	"  \"summary\": \"One short sentence describing the fleet plan\",\n" +
	"  \"notes\": [{\"ship_id\": \"<id>\" | null, \"text\": \"<advisory>\"}]\n" +
	"}"

const shipSystemPrompt = "You command a single RED ship. Make tactical decisions using only your Ship " +
	"Summary and the FleetIntent. Follow FleetIntent when possible; if immediate safety or opportunity " +
	"requires otherwise, prefix the summary with 'deviate:'. Coordinates: X east (m), Y north (m). " +
	"Bearings: 0°=North, 90°=East. Output EXACTLY one JSON object with keys {tool, arguments, summary}. " +
	"No markdown or extra keys. Allowed tools: set_nav(heading, speed_kn, depth_m); " +
	"fire_torpedo(tube, bearing_deg, run_depth_m, enable_range_m); drop_depth_charges(spread_meters, min_depth_m, " +
	"max_depth_m, spread_size); deploy_countermeasure(type: 'noisemaker'|'decoy'). Use only tools " +
	"supported by your capabilities."

func fleetUserPrompt(summary map[string]any) string {
	body, _ := json.Marshal(summary)
	return "FLEET_SUMMARY_JSON:\n" + string(body) + "\n\nFORMAT REQUIREMENTS:\n" +
		"- Include EVERY RED ship id under 'objectives' with a 'destination' [x,y] in meters.\n" +
		"- 'speed_kn' and 'goal' are optional per ship.\n" +
		"- Output ONLY the JSON object with allowed keys shown above. No extra prose.\n" +
		"- Do not infer unknown enemy truth beyond the provided beliefs."
}

func shipUserPrompt(summary map[string]any) string {
	body, _ := json.Marshal(summary)
	return "SHIP_SUMMARY_JSON:\n" + string(body) + "\n\nFORMAT & BEHAVIOR:\n" +
		"- Prefer the FleetIntent; if deviating, prefix summary with 'deviate:'.\n" +
		"- Use only allowed tools supported by capabilities. Choose plausible parameters.\n" +
		"- If no change is needed, return set_nav holding current values with a brief summary.\n" +
		"- Output ONLY one JSON with keys {tool, arguments, summary}."
}
