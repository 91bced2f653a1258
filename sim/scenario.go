package sim

// DefaultScenario builds the seed engagement that main starts with
// (spec §8, S1): one BLUE SSN ownship and one RED convoy-escort
// pair, grounded on the original's hardcoded demo mission setup.
func DefaultScenario() (*World, string) {
	w := NewWorld()

	ownship := NewShip("OWNSHIP", SideBlue, ClassSSN)
	ownship.Kin.X, ownship.Kin.Y = 0, 0
	ownship.Kin.Depth = 100
	ownship.Kin.Heading = 270
	ownship.Kin.Speed = 8
	ownship.Kin.OrderedHeading = ownship.Kin.Heading
	ownship.Kin.OrderedSpeed = ownship.Kin.Speed
	ownship.Kin.OrderedDepth = ownship.Kin.Depth
	w.AddShip(ownship)

	red1 := NewShip("RED-01", SideRed, ClassSSN)
	red1.Kin.X, red1.Kin.Y = 3000, 0
	red1.Kin.Depth = 120
	red1.Kin.Heading = 90
	red1.Kin.Speed = 8
	red1.Kin.OrderedHeading = red1.Kin.Heading
	red1.Kin.OrderedSpeed = red1.Kin.Speed
	red1.Kin.OrderedDepth = red1.Kin.Depth
	w.AddShip(red1)

	red2 := NewShip("RED-02", SideRed, ClassDestroyer)
	red2.Kin.X, red2.Kin.Y = 3500, 800
	red2.Kin.Depth = 20
	red2.Kin.Heading = 95
	red2.Kin.Speed = 12
	red2.Kin.OrderedHeading = red2.Kin.Heading
	red2.Kin.OrderedSpeed = red2.Kin.Speed
	red2.Kin.OrderedDepth = red2.Kin.Depth
	w.AddShip(red2)

	target := [2]float64{20000, 5000}
	w.Mission = &MissionBrief{
		Objective:      "Track and shadow the RED convoy escort without being counter-detected.",
		TargetWaypoint: &target,
		Convoy:         []string{"RED-01"},
		Objectives: map[string]string{
			"RED": "Screen the convoy toward the target waypoint while evading passive detection.",
		},
		EMCON:       EMCON{ActivePingAllowed: false, RadioDiscipline: "restricted"},
		SpeedLimits: map[string]float64{"RED-01": 8, "RED-02": 14},
	}

	return w, ownship.ID
}
