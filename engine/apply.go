package engine

import (
	"fmt"
	"math"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// ApplyToolCall applies one validated AI (or manually injected) tool call
// against the World, per §4.9's application rules. It is the only place
// orchestrator output reaches ship state, and always runs on the tick
// thread (drained from the orchestrator's action queue at the start of
// the tick body, or synchronously from ai.tool command dispatch).
func (c *Core) ApplyToolCall(a ValidatedAction) error {
	switch a.Tool {
	case "set_fleet_intent":
		return c.applySetFleetIntent(a)
	case "set_nav":
		return c.applySetNav(a)
	case "fire_torpedo", "launch_torpedo_quick":
		return c.applyFireTorpedo(a)
	case "drop_depth_charges":
		return c.applyDropDepthCharges(a)
	case "deploy_countermeasure":
		return c.applyDeployCountermeasure(a)
	case "active_ping":
		return c.applyActivePing(a)
	default:
		return fmt.Errorf("unsupported tool: %s", a.Tool)
	}
}

func argFloat(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

func argFloatPtr(args map[string]any, key string) *float64 {
	if v, ok := args[key]; ok {
		if f, ok := v.(float64); ok {
			return &f
		}
	}
	return nil
}

func argString(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// applySetFleetIntent replaces the World's FleetIntent wholesale and
// records a FleetIntentRecord (§4.9, §4.10).
func (c *Core) applySetFleetIntent(a ValidatedAction) error {
	intent, ok := a.Arguments["__intent"].(*sim.FleetIntent)
	if !ok || intent == nil {
		return fmt.Errorf("set_fleet_intent missing normalized intent")
	}
	c.World.Mu.Lock()
	defer c.World.Mu.Unlock()
	c.World.FleetIntent = intent
	c.World.RecordFleetIntent(sim.FleetIntentRecord{
		Hash: fmt.Sprintf("%d", c.World.TickSeq), Body: intent,
		Summary: intent.Summary, TickSeq: c.World.TickSeq,
	})
	return nil
}

func (c *Core) shipFor(a ValidatedAction) (*sim.Ship, error) {
	s := c.World.Ships[a.ShipID]
	if s == nil {
		return nil, fmt.Errorf("unknown ship: %s", a.ShipID)
	}
	return s, nil
}

func (c *Core) applySetNav(a ValidatedAction) error {
	s, err := c.shipFor(a)
	if err != nil {
		return err
	}
	if !s.Capabilities.CanSetNav {
		return ErrNoCapability
	}
	s.Lock()
	defer s.Unlock()
	if h := argFloatPtr(a.Arguments, "heading"); h != nil {
		s.Kin.OrderedHeading = normalizeHeading(*h)
	}
	if sp := argFloatPtr(a.Arguments, "speed_kn"); sp != nil {
		s.Kin.OrderedSpeed = clamp(*sp, 0, s.Hull.MaxSpeed)
	}
	if d := argFloatPtr(a.Arguments, "depth_m"); d != nil {
		s.Kin.OrderedDepth = clamp(*d, 0, s.Hull.MaxDepth)
	}
	return nil
}

func (c *Core) applyFireTorpedo(a ValidatedAction) error {
	s, err := c.shipFor(a)
	if err != nil {
		return err
	}
	if !s.Capabilities.HasTorpedoes {
		return ErrNoCapability
	}
	s.Lock()
	bearing := argFloat(a.Arguments, "bearing_deg", s.Kin.Heading)
	runDepth := argFloat(a.Arguments, "run_depth_m", s.Kin.Depth)
	enableRange := argFloatPtr(a.Arguments, "enable_range_m")
	if enableRange == nil {
		v := sim.QuickLaunchDefaultRange
		enableRange = &v
	}
	doctrine := sim.GuidanceDoctrine(argString(a.Arguments, "doctrine", string(sim.DoctrinePassive)))
	torp, err := TryLaunchTorpedoQuick(s, bearing, runDepth, enableRange, doctrine)
	s.Unlock()
	if err != nil {
		return err
	}
	c.World.Mu.Lock()
	c.World.Torpedoes[torp.ID] = torp
	c.World.Mu.Unlock()
	return nil
}

func (c *Core) applyDropDepthCharges(a ValidatedAction) error {
	s, err := c.shipFor(a)
	if err != nil {
		return err
	}
	if !s.Capabilities.HasDepthCharges {
		return ErrNoCapability
	}
	spread := argFloat(a.Arguments, "spread_meters", 30)
	minD := argFloat(a.Arguments, "min_depth_m", 20)
	maxD := argFloat(a.Arguments, "max_depth_m", 60)
	n := int(argFloat(a.Arguments, "spread_size", 3))
	s.Lock()
	spawned, err := TryDropDepthCharges(s, spread, minD, maxD, n, c.RNG)
	s.Unlock()
	if err != nil {
		return err
	}
	c.World.Mu.Lock()
	for _, dc := range spawned {
		c.World.DepthCharges[dc.ID] = dc
	}
	c.World.Mu.Unlock()
	return nil
}

// applyDeployCountermeasure is accepted when the ship's capability list
// names the requested type, and is otherwise a no-op (§4.9: "no-op").
func (c *Core) applyDeployCountermeasure(a ValidatedAction) error {
	s, err := c.shipFor(a)
	if err != nil {
		return err
	}
	kind := argString(a.Arguments, "type", "")
	for _, cm := range s.Capabilities.Countermeasures {
		if cm == kind {
			return nil
		}
	}
	return fmt.Errorf("countermeasure not available: %s", kind)
}

func (c *Core) applyActivePing(a ValidatedAction) error {
	s, err := c.shipFor(a)
	if err != nil {
		return err
	}
	if !s.Capabilities.HasActiveSonar {
		return ErrNoCapability
	}
	s.Lock()
	defer s.Unlock()
	return StartActivePing(c.World, s, c.RNG)
}

// IntentDerivedNav computes the §4.9 fallback navigation order for a RED
// ship when the ship engine returns an unknown tool: bearing toward the
// ship's FleetIntent destination, speed from the objective (else a
// conservative default, or max speed under alert), depth 0 for surface
// transit.
func IntentDerivedNav(w *sim.World, s *sim.Ship, alert bool) (headingDeg, speedKn, depthM float64, ok bool) {
	obj, present := w.FleetIntent.Objectives[s.ID]
	if !present {
		return 0, 0, 0, false
	}
	headingDeg = BearingDegrees(s.Kin.X, s.Kin.Y, obj.Destination[0], obj.Destination[1])
	switch {
	case obj.SpeedKn != nil:
		speedKn = *obj.SpeedKn
	case alert:
		speedKn = s.Hull.MaxSpeed
	default:
		speedKn = math.Min(s.Hull.MaxSpeed, 18.0)
	}
	depthM = 0
	return headingDeg, speedKn, depthM, true
}
