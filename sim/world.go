package sim

import "sync"

// World is the single container owning every entity; all references
// outside the World are by string id (§3).
type World struct {
	Mu sync.RWMutex

	Ships        map[string]*Ship
	Torpedoes    map[string]*Torpedo
	DepthCharges map[string]*DepthCharge
	Tasks        map[Station][]*MaintenanceTask

	FleetIntent        *FleetIntent
	FleetIntentHistory []FleetIntentRecord

	Contacts *ContactHistory

	TransientEvents []TransientEvent

	TickSeq uint64
	SimTime float64 // seconds since start

	Mission *MissionBrief
}

// NewWorld returns an empty World ready for ships to be spawned into.
func NewWorld() *World {
	return &World{
		Ships:        make(map[string]*Ship),
		Torpedoes:    make(map[string]*Torpedo),
		DepthCharges: make(map[string]*DepthCharge),
		Tasks:        make(map[Station][]*MaintenanceTask),
		FleetIntent:  NewFleetIntent(),
		Contacts:     NewContactHistory(ContactHistoryRingSize),
	}
}

// AddShip registers a new ship in the World.
func (w *World) AddShip(s *Ship) {
	w.Ships[s.ID] = s
}

// ShipsBySide returns every ship on the given side.
func (w *World) ShipsBySide(side Side) []*Ship {
	out := make([]*Ship, 0)
	for _, s := range w.Ships {
		if s.Side == side {
			out = append(out, s)
		}
	}
	return out
}

// Emit appends a transient event, surfaced in this tick's telemetry and
// cleared at tick end (§4.11).
func (w *World) Emit(eventType string, payload map[string]any) {
	w.TransientEvents = append(w.TransientEvents, TransientEvent{Type: eventType, Payload: payload})
}

// FlushTransientEvents clears the per-tick transient event list.
func (w *World) FlushTransientEvents() {
	w.TransientEvents = nil
}

// RecordFleetIntent pushes a new applied-intent record onto the bounded
// history (last FleetIntentHistorySize), grounded on §4.10.
func (w *World) RecordFleetIntent(rec FleetIntentRecord) {
	w.FleetIntentHistory = append(w.FleetIntentHistory, rec)
	if len(w.FleetIntentHistory) > FleetIntentHistorySize {
		w.FleetIntentHistory = w.FleetIntentHistory[len(w.FleetIntentHistory)-FleetIntentHistorySize:]
	}
}
