package sim

// ShipClass is one of the three hull types the catalog defines.
type ShipClass string

const (
	ClassSSN       ShipClass = "SSN"
	ClassConvoy    ShipClass = "Convoy"
	ClassDestroyer ShipClass = "Destroyer"
)

// Capabilities gates which action types may ever be applied to a ship.
// A ship with a false capability must no-op every action of that type.
type Capabilities struct {
	CanSetNav        bool
	HasActiveSonar   bool
	HasTorpedoes     bool
	HasGuns          bool
	HasDepthCharges  bool
	Countermeasures  []string
}

// ShipDef is the catalog entry for a ship class: the template applied on
// spawn. Mirrors the teacher's ShipStats-keyed-by-ShipType table.
type ShipDef struct {
	Name            string
	Class           ShipClass
	Capabilities    Capabilities
	DefaultHull     Hull
	DefaultWeapons  func() Weapons
	DefaultAcoustic Acoustics
}

// ShipCatalog is the fixed table of ship class definitions, grounded on
// original_source/models.py SHIP_CATALOG.
var ShipCatalog = map[ShipClass]ShipDef{
	ClassSSN: {
		Name:  "Nuclear Attack Submarine",
		Class: ClassSSN,
		Capabilities: Capabilities{
			CanSetNav:       true,
			HasActiveSonar:  true,
			HasTorpedoes:    true,
			HasGuns:         false,
			HasDepthCharges: false,
			Countermeasures: []string{"noisemaker", "decoy"},
		},
		DefaultHull: Hull{
			MaxDepth:    300.0,
			CrushDepth:  600.0,
			MaxSpeed:    30.0,
			QuietSpeed:  5.0,
			TurnRateMax: 7.0,
			AccelMax:    0.5,
			DecelMax:    0.7,
		},
		DefaultWeapons: func() Weapons { return NewWeapons(6, 6, 45.0, 8.0, 3.0, 0, 2.0) },
		DefaultAcoustic: Acoustics{
			SourceLevelBySpeed: map[int]float64{5: 110.0, 10: 118.0, 15: 130.0},
			ThermoclineOn:      true,
		},
	},
	ClassConvoy: {
		Name:  "Convoy Cargo Vessel",
		Class: ClassConvoy,
		Capabilities: Capabilities{
			CanSetNav:       true,
			HasActiveSonar:  false,
			HasTorpedoes:    false,
			HasGuns:         false,
			HasDepthCharges: false,
			Countermeasures: nil,
		},
		DefaultHull: Hull{
			MaxDepth:    20.0,
			CrushDepth:  600.0,
			MaxSpeed:    20.0,
			QuietSpeed:  5.0,
			TurnRateMax: 7.0,
			AccelMax:    0.5,
			DecelMax:    0.7,
		},
		DefaultWeapons: func() Weapons { return NewWeapons(0, 0, 45.0, 8.0, 3.0, 0, 2.0) },
		DefaultAcoustic: Acoustics{
			SourceLevelBySpeed: map[int]float64{5: 120.0, 10: 130.0, 15: 140.0},
			ThermoclineOn:      false,
		},
	},
	ClassDestroyer: {
		Name:  "Destroyer (ASW)",
		Class: ClassDestroyer,
		Capabilities: Capabilities{
			CanSetNav:      true,
			HasActiveSonar: true,
			// Normalized per spec.md's Open Question resolution: destroyers
			// carry depth charges, not torpedoes.
			HasTorpedoes:    false,
			HasGuns:         true,
			HasDepthCharges: true,
			Countermeasures: nil,
		},
		DefaultHull: Hull{
			MaxDepth:    50.0,
			CrushDepth:  600.0,
			MaxSpeed:    32.0,
			QuietSpeed:  8.0,
			TurnRateMax: 7.0,
			AccelMax:    0.5,
			DecelMax:    0.7,
		},
		DefaultWeapons: func() Weapons { return NewWeapons(0, 0, 45.0, 8.0, 3.0, 30, 2.0) },
		DefaultAcoustic: Acoustics{
			SourceLevelBySpeed: map[int]float64{5: 125.0, 15: 140.0, 25: 150.0},
			ThermoclineOn:      false,
		},
	},
}
