package engine

import (
	"encoding/json"
	"fmt"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
)

// The handlers in this file follow the teacher's movement_handlers.go /
// combat_handlers.go pattern: decode a typed payload, validate, lock the
// target ship, mutate, and return a human-readable error on rejection
// (§7 kind 1). Mutations happen on the tick thread (commands are drained
// before the tick body runs, §5), so no additional locking beyond the
// per-ship mutex used for data consistency with reader goroutines.

type helmOrderPayload struct {
	Heading *float64 `json:"heading"`
	SpeedKn *float64 `json:"speed_kn"`
	DepthM  *float64 `json:"depth_m"`
}

func (c *Core) handleHelmOrder(payload json.RawMessage) error {
	var p helmOrderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid helm.order payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	if p.Heading != nil {
		s.Kin.OrderedHeading = normalizeHeading(*p.Heading)
	}
	if p.SpeedKn != nil {
		v := *p.SpeedKn
		if v < 0 {
			return fmt.Errorf("speed_kn must be >= 0")
		}
		if v > s.Hull.MaxSpeed {
			v = s.Hull.MaxSpeed
		}
		s.Kin.OrderedSpeed = v
	}
	if p.DepthM != nil {
		v := *p.DepthM
		if v < 0 || v > s.Hull.MaxDepth {
			return fmt.Errorf("depth_m out of range [0, %.0f]", s.Hull.MaxDepth)
		}
		s.Kin.OrderedDepth = v
	}
	return nil
}

func (c *Core) handleSonarPing(payload json.RawMessage) error {
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	if !s.Capabilities.HasActiveSonar {
		return ErrNoCapability
	}
	s.Lock()
	defer s.Unlock()
	return StartActivePing(c.World, s, c.RNG)
}

type tubePayload struct {
	TubeIdx int    `json:"tube_idx"`
	Weapon  string `json:"weapon"`
	Open    bool   `json:"open"`
}

func (c *Core) handleTubeLoad(payload json.RawMessage) error {
	var p tubePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.tube.load payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	if p.Weapon == "" {
		p.Weapon = "Mk48"
	}
	s.Lock()
	defer s.Unlock()
	return TryLoadTube(s, p.TubeIdx, p.Weapon)
}

func (c *Core) handleTubeFlood(payload json.RawMessage) error {
	var p tubePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.tube.flood payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	return TryFloodTube(s, p.TubeIdx)
}

func (c *Core) handleTubeDoors(payload json.RawMessage) error {
	var p tubePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.tube.doors payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	return TrySetDoors(s, p.TubeIdx, p.Open)
}

type weaponsFirePayload struct {
	TubeIdx      int      `json:"tube_idx"`
	BearingDeg   float64  `json:"bearing_deg"`
	RunDepthM    float64  `json:"run_depth_m"`
	EnableRangeM *float64 `json:"enable_range_m"`
	Doctrine     string   `json:"doctrine"`
}

func (c *Core) handleWeaponsFire(payload json.RawMessage) error {
	var p weaponsFirePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.fire payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	torp, err := TryFire(s, p.TubeIdx, p.BearingDeg, p.RunDepthM, p.EnableRangeM, sim.GuidanceDoctrine(p.Doctrine))
	s.Unlock()
	if err != nil {
		return err
	}
	c.World.Mu.Lock()
	c.World.Torpedoes[torp.ID] = torp
	c.World.Mu.Unlock()
	return nil
}

// handleWeaponsTestFire is a debug-only path that launches a torpedo via
// the quick-launch path, bypassing tube preparation; it still uses one
// stored torpedo and is subject to the quick-launch cooldown (no
// original_source equivalent; added per spec §6 for scripted-scenario
// testing).
func (c *Core) handleWeaponsTestFire(payload json.RawMessage) error {
	var p weaponsFirePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.test_fire payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	torp, err := TryLaunchTorpedoQuick(s, p.BearingDeg, p.RunDepthM, p.EnableRangeM, sim.GuidanceDoctrine(p.Doctrine))
	s.Unlock()
	if err != nil {
		return err
	}
	c.World.Mu.Lock()
	c.World.Torpedoes[torp.ID] = torp
	c.World.Mu.Unlock()
	return nil
}

type depthChargesDropPayload struct {
	SpreadMeters float64 `json:"spread_meters"`
	MinDepthM    float64 `json:"min_depth_m"`
	MaxDepthM    float64 `json:"max_depth_m"`
	SpreadSize   int     `json:"spread_size"`
}

func (c *Core) handleDepthChargesDrop(payload json.RawMessage) error {
	var p depthChargesDropPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid weapons.depth_charges.drop payload: %w", err)
	}
	if p.SpreadSize < 1 {
		p.SpreadSize = 1
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	spawned, err := TryDropDepthCharges(s, p.SpreadMeters, p.MinDepthM, p.MaxDepthM, p.SpreadSize, c.RNG)
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

type reactorSetPayload struct {
	OutputMW float64 `json:"output_mw"`
}

func (c *Core) handleReactorSet(payload json.RawMessage) error {
	var p reactorSetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid engineering.reactor.set payload: %w", err)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	if s.Reactor.Scrammed {
		return fmt.Errorf("reactor scrammed")
	}
	if p.OutputMW < 0 || p.OutputMW > s.Reactor.MaxMW {
		return fmt.Errorf("output_mw out of range [0, %.0f]", s.Reactor.MaxMW)
	}
	s.Reactor.OutputMW = p.OutputMW
	return nil
}

func (c *Core) handleReactorScram(payload json.RawMessage) error {
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	s.Reactor.Scrammed = true
	return nil
}

type powerAllocatePayload struct {
	Helm        float64 `json:"helm"`
	Weapons     float64 `json:"weapons"`
	Sonar       float64 `json:"sonar"`
	Engineering float64 `json:"engineering"`
}

// handlePowerAllocate rejects any allocation whose sum exceeds the budget
// tolerance, per scenario S3: {0.3,0.3,0.3,0.2} sums to 1.1 and must be
// rejected with a message naming the budget overage.
func (c *Core) handlePowerAllocate(payload json.RawMessage) error {
	var p powerAllocatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid engineering.power.allocate payload: %w", err)
	}
	if p.Helm < 0 || p.Weapons < 0 || p.Sonar < 0 || p.Engineering < 0 {
		return fmt.Errorf("power allocations must be non-negative")
	}
	sum := p.Helm + p.Weapons + p.Sonar + p.Engineering
	if sum > sim.PowerBudgetRejectTolerance {
		return fmt.Errorf("allocation exceeds budget: helm+weapons+sonar+engineering = %.3f > 1.0", sum)
	}
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	s.Power = sim.PowerAllocations{Helm: p.Helm, Weapons: p.Weapons, Sonar: p.Sonar, Engineering: p.Engineering}
	return nil
}

func (c *Core) handlePumpToggle(payload json.RawMessage) error {
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	s.PumpsOn = !s.PumpsOn
	return nil
}

type taskStartPayload struct {
	TaskID string `json:"task_id"`
}

func (c *Core) handleTaskStart(payload json.RawMessage) error {
	var p taskStartPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid station.task.start payload: %w", err)
	}
	c.World.Mu.Lock()
	defer c.World.Mu.Unlock()
	for _, list := range c.World.Tasks {
		for _, t := range list {
			if t.ID == p.TaskID {
				t.Started = true
				return nil
			}
		}
	}
	return fmt.Errorf("task not found: %s", p.TaskID)
}

func (c *Core) handleCaptainConsent(payload json.RawMessage) error {
	c.captainConsent = true
	return nil
}

func (c *Core) handlePeriscopeRaise(payload json.RawMessage) error {
	var p struct {
		Raised bool `json:"raised"`
	}
	_ = json.Unmarshal(payload, &p)
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	if s.Kin.Depth > sim.VisualMaxObserverZ {
		return fmt.Errorf("too deep to raise periscope")
	}
	s.PeriscopeRaised = p.Raised
	return nil
}

func (c *Core) handleRadioRaise(payload json.RawMessage) error {
	var p struct {
		Raised bool `json:"raised"`
	}
	_ = json.Unmarshal(payload, &p)
	s := c.ownship()
	if s == nil {
		return fmt.Errorf("ownship not found")
	}
	s.Lock()
	defer s.Unlock()
	s.RadioRaised = p.Raised
	return nil
}

// handleAITool accepts a manually-injected tool call, applied through the
// same ApplyToolCall path as orchestrator-produced actions (§4.9's
// "operator-in-the-loop override").
func (c *Core) handleAITool(payload json.RawMessage) error {
	var p struct {
		ShipID    string         `json:"ship_id"`
		Tool      string         `json:"tool"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid ai.tool payload: %w", err)
	}
	return c.ApplyToolCall(ValidatedAction{ShipID: p.ShipID, Tool: p.Tool, Arguments: p.Arguments, Source: "operator"})
}

func (c *Core) handleDebugRestart(payload json.RawMessage) error {
	for _, s := range c.World.Ships {
		s.Lock()
		s.Damage = sim.DamageState{}
		s.Reactor.Scrammed = false
		s.Reactor.OutputMW = 60.0
		s.MaintenanceLevels = sim.DefaultMaintenanceLevels()
		s.Unlock()
	}
	c.World.Torpedoes = make(map[string]*sim.Torpedo)
	c.World.DepthCharges = make(map[string]*sim.DepthCharge)
	return nil
}

func (c *Core) handleDebugSurfaceVessel(payload json.RawMessage) error {
	var p struct {
		ShipID string `json:"ship_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid debug.mission.surface_vessel payload: %w", err)
	}
	s := c.World.Ships[p.ShipID]
	if s == nil {
		return fmt.Errorf("ship not found: %s", p.ShipID)
	}
	s.Lock()
	s.Kin.OrderedDepth = 0
	s.Kin.Depth = 0
	s.Unlock()
	return nil
}

// handleDebugMission1 seeds the canonical single-convoy scenario, grounded
// on original_source/sub-bridge's mission1 debug hook (a Convoy, a
// shadowing Destroyer, RED fleet intent set to transit).
func (c *Core) handleDebugMission1(payload json.RawMessage) error {
	convoy := sim.NewShip("convoy_1", sim.SideRed, sim.ClassConvoy)
	convoy.Kin.X, convoy.Kin.Y = 4000, 0
	escort := sim.NewShip("destroyer_1", sim.SideRed, sim.ClassDestroyer)
	escort.Kin.X, escort.Kin.Y = 4500, 500
	c.World.Mu.Lock()
	c.World.AddShip(convoy)
	c.World.AddShip(escort)
	c.World.Mu.Unlock()
	c.noise[convoy.ID] = NewNoiseEngine()
	c.noise[escort.ID] = NewNoiseEngine()
	c.maintenance[convoy.ID] = NewMaintenanceScheduler(c.Settings.MaintSpawnScale, c.Settings.FirstTaskDelayS)
	c.maintenance[escort.ID] = NewMaintenanceScheduler(c.Settings.MaintSpawnScale, c.Settings.FirstTaskDelayS)
	return nil
}

func (c *Core) handleDebugMaintenanceSpawns(payload json.RawMessage) error {
	var p struct {
		Disabled bool `json:"disabled"`
	}
	_ = json.Unmarshal(payload, &p)
	c.Debug.DisableMaintenanceSpawns = p.Disabled
	return nil
}

func (c *Core) handleDebugVisualForce(payload json.RawMessage, forPlayer bool) error {
	if forPlayer {
		c.Debug.ForceVisualPlayer100 = true
	} else {
		c.Debug.ForceVisualEnemy100 = true
	}
	return nil
}
