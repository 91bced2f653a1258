package engine

import (
	"context"
	"time"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/metrics"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"
	channerics "github.com/niceyeti/channerics/channels"
)

// Run drives the fixed-rate tick loop until ctx is cancelled, grounded on
// the teacher's main game loop (cooperative sleep between fixed-rate
// ticks) generalized to the ordered tick body of spec §4.1. The ticker
// itself is channerics.NewTicker(done, interval), the same
// done-channel-bound ticker the pack's fastview client uses for its
// ping loop, so Run needs no separate ticker.Stop() bookkeeping.
func (c *Core) Run(ctx context.Context) {
	interval := time.Second / time.Duration(c.Settings.TickHz)
	if interval <= 0 {
		interval = sim.TickInterval
	}
	ticks := channerics.NewTicker(ctx.Done(), interval)

	last := time.Now()
	var snapshotAccum float64

	for range ticks {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now
		c.tick(dt, &snapshotAccum)
	}
}

// tick executes one pass of the normative ordered tick body, §4.1 (a)-(n).
func (c *Core) tick(dt float64, snapshotAccum *float64) {
	t0 := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(t0).Seconds()) }()

	c.drainCommands() // commands are FIFO'd in front of the next tick, §5

	// (a) orchestrator scheduling + drain previously-validated actions.
	// ApplyToolCall's handlers take World.Mu themselves, so the tick lock
	// is acquired only after this step.
	if c.AI != nil {
		c.AI.Step(c.World, c.World.SimTime, dt)
		for _, action := range c.AI.DrainActions() {
			if err := c.ApplyToolCall(action); err != nil && c.Events != nil {
				c.Events.Append("ai.tool.apply", map[string]any{"ship_id": action.ShipID, "tool": action.Tool, "error": err.Error()})
			} else if c.Events != nil {
				c.Events.Append("ai.tool.apply", map[string]any{"ship_id": action.ShipID, "tool": action.Tool})
			}
		}
	}

	c.World.Mu.Lock()
	defer c.World.Mu.Unlock()

	ownship := c.World.Ships[c.OwnshipID]

	// (b) ownship kinematics.
	if ownship != nil {
		StepKinematics(ownship, dt, ownship.PumpsOn)
	}

	// (c) step tube/cooldown timers for all ships.
	for _, s := range c.World.Ships {
		StepTubes(s, dt)
	}

	// (d) integrate non-player ships.
	if !c.Debug.EnemyStatic || c.AI != nil {
		for id, s := range c.World.Ships {
			if id == c.OwnshipID {
				continue
			}
			StepKinematics(s, dt, s.PumpsOn)
		}
	}

	// (e) step torpedoes and depth charges.
	emit := func(eventType string, payload map[string]any) {
		c.World.Emit(eventType, payload)
		if c.Events != nil {
			c.Events.Append(eventType, payload)
		}
	}
	for _, t := range c.World.Torpedoes {
		shooter := c.World.Ships[t.OwnerID]
		StepTorpedo(t, c.World, dt, shooter, c.RNG, emit)
	}
	newDepthCharges := make(map[string]int, len(c.World.Ships))
	for _, dc := range c.World.DepthCharges {
		wasExploded := dc.Exploded
		StepDepthCharge(dc, c.World, dt, emit)
		if !wasExploded {
			newDepthCharges[dc.OwnerID]++
		}
	}

	// (f) damage + engineering.
	for _, s := range c.World.Ships {
		pumpEffect := 0.0
		if s.PumpsOn {
			pumpEffect = 2.0
		}
		StepDamage(s, dt, pumpEffect)
		StepEngineering(s, dt)
	}

	// (g) maintenance tasks with stage-aggregated penalty reapplication.
	for id, s := range c.World.Ships {
		sched := c.maintenance[id]
		if sched == nil {
			sched = NewMaintenanceScheduler(c.Settings.MaintSpawnScale, c.Settings.FirstTaskDelayS)
			c.maintenance[id] = sched
		}
		sched.Step(s, c.World.Tasks, dt, c.RNG, c.Debug.DisableMaintenanceSpawns)
	}

	// (h) active-ping cooldowns.
	for _, s := range c.World.Ships {
		s.ActivePing.Step(dt)
	}

	// (i) noise budget + dynamic source level per ship.
	stationNoise := make(map[string]StationNoise, len(c.World.Ships))
	for id, s := range c.World.Ships {
		ne := c.noise[id]
		if ne == nil {
			ne = NewNoiseEngine()
			c.noise[id] = ne
		}
		n := ne.Step(s, c.World.Tasks, newDepthCharges[id], dt, c.RNG)
		stationNoise[id] = n
		s.Acoustics.DynamicSourceLevel = DynamicSourceLevel(s, n)
	}

	// (j) passive contacts. ownSynthetic is never filled, so the sonar
	// frame carries no projectile, explosion or counter-detection contacts.
	var ownPassive, ownSynthetic, ownPeriscope []sim.TelemetryContact
	if ownship != nil {
		others := c.World.ShipsBySide(oppositeSide(ownship.Side))
		ownPassive = PassiveContacts(ownship, others, c.RNG)
	}

	// (k) visual detection scan every 5s per observer.
	c.visualScanAccum += dt
	runVisual := c.visualScanAccum >= sim.VisualScanIntervalS
	if runVisual {
		c.visualScanAccum = 0
	}
	if ownship != nil && runVisual {
		others := c.World.ShipsBySide(oppositeSide(ownship.Side))
		ownPeriscope = VisualScan(ownship, others, c.World.SimTime, c.RNG, c.Debug.ForceVisualPlayer100)
		GCVisualMemory(ownship, c.World.SimTime)
	}
	if runVisual {
		for id, s := range c.World.Ships {
			if id == c.OwnshipID || s.Side != sim.SideRed {
				continue
			}
			blues := c.World.ShipsBySide(sim.SideBlue)
			VisualScan(s, blues, c.World.SimTime, c.RNG, c.Debug.ForceVisualEnemy100)
			GCVisualMemory(s, c.World.SimTime)
		}
	}

	// (l) build per-station telemetry frames and publish.
	if ownship != nil {
		var pingResults []ActivePingReturn
		frames := c.BuildFrames(ownship, stationNoise[ownship.ID], ownPassive, ownSynthetic, ownPeriscope, pingResults)
		c.PublishAll(frames)
	}

	// (m) flush transient events, optionally persist a snapshot.
	c.World.FlushTransientEvents()
	*snapshotAccum += dt
	if c.Settings.SnapshotS > 0 && *snapshotAccum >= c.Settings.SnapshotS {
		*snapshotAccum = 0
		if c.Events != nil && ownship != nil {
			c.Events.Append("snapshot", map[string]any{
				"heading": ownship.Kin.Heading, "speed": ownship.Kin.Speed,
				"depth": ownship.Kin.Depth, "ts": c.World.SimTime,
			})
		}
	}

	// (n) scheduled timed comms — no comms queue implemented beyond the
	// FleetIntent notes mechanism; nothing further to process here.

	c.World.TickSeq++
	c.World.SimTime += dt
}

func oppositeSide(s sim.Side) sim.Side {
	if s == sim.SideBlue {
		return sim.SideRed
	}
	return sim.SideBlue
}
