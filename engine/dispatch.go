package engine

import (
	"encoding/json"
	"fmt"
	"log"
)

// Command is one inbound command-topic message (§6). Payload is decoded
// per-topic by the matching handler. Reply, if non-nil, receives the
// handler's result (nil on success) so the originating connection can
// surface validation errors per §7 kind 1; it must be buffered by at
// least 1 or receive-ready, since drainCommands sends without blocking.
type Command struct {
	Topic   string
	Payload json.RawMessage
	Reply   chan<- error
}

// HandleCommand dispatches one command to its handler, grounded on the
// teacher's server/websocket.go handleMessage switch-on-type pattern with
// panic recovery, generalized from Netrek's message types to spec.md §6's
// command topics. Returns nil on success or a human-readable error string
// wrapped as an error (§7 kind 1: validation errors surface to the caller;
// dispatch itself never propagates upward beyond this return).
func (c *Core) HandleCommand(topic string, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in HandleCommand for topic %s: %v", topic, r)
			err = fmt.Errorf("internal error handling %s", topic)
		}
	}()

	switch topic {
	case "helm.order":
		return c.handleHelmOrder(payload)
	case "sonar.ping":
		return c.handleSonarPing(payload)
	case "weapons.tube.load":
		return c.handleTubeLoad(payload)
	case "weapons.tube.flood":
		return c.handleTubeFlood(payload)
	case "weapons.tube.doors":
		return c.handleTubeDoors(payload)
	case "weapons.fire":
		return c.handleWeaponsFire(payload)
	case "weapons.test_fire":
		return c.handleWeaponsTestFire(payload)
	case "weapons.depth_charges.drop":
		return c.handleDepthChargesDrop(payload)
	case "engineering.reactor.set":
		return c.handleReactorSet(payload)
	case "engineering.reactor.scram":
		return c.handleReactorScram(payload)
	case "engineering.power.allocate":
		return c.handlePowerAllocate(payload)
	case "engineering.pump.toggle":
		return c.handlePumpToggle(payload)
	case "station.task.start":
		return c.handleTaskStart(payload)
	case "captain.consent":
		return c.handleCaptainConsent(payload)
	case "captain.periscope.raise":
		return c.handlePeriscopeRaise(payload)
	case "captain.radio.raise":
		return c.handleRadioRaise(payload)
	case "ai.tool":
		return c.handleAITool(payload)
	case "debug.restart":
		return c.handleDebugRestart(payload)
	case "debug.mission.surface_vessel":
		return c.handleDebugSurfaceVessel(payload)
	case "debug.mission1":
		return c.handleDebugMission1(payload)
	case "debug.maintenance.spawns":
		return c.handleDebugMaintenanceSpawns(payload)
	case "debug.visual.player_100":
		return c.handleDebugVisualForce(payload, true)
	case "debug.visual.enemy_100":
		return c.handleDebugVisualForce(payload, false)
	default:
		return fmt.Errorf("unknown topic: %s", topic)
	}
}
