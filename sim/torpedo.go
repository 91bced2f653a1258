package sim

// GuidanceDoctrine selects the torpedo's seeker behavior.
type GuidanceDoctrine string

const (
	DoctrineActive  GuidanceDoctrine = "active"
	DoctrinePassive GuidanceDoctrine = "passive"
	DoctrineWake    GuidanceDoctrine = "wake"
)

// Torpedo is owned by the World from fire until detonation, self-destruct,
// or timeout (RunTimeS reaching MaxRunTimeS).
type Torpedo struct {
	ID      string
	OwnerID string // shooter ship id
	Side    Side

	X, Y    float64
	Depth   float64
	Heading float64
	Speed   float64

	Armed        bool
	EnableRangeM float64
	SeekerRangeM float64
	SeekerConeD  float64

	RunTimeS    float64
	MaxRunTimeS float64
	RunDepth    float64

	Doctrine GuidanceDoctrine
	ProNavN  float64

	SpoofedTimerS float64

	// PrevLOSValid/PrevLOSDeg hold the prior frame's line-of-sight bearing
	// for proportional-navigation rate estimation; the first post-arm frame
	// has no prior LOS and falls back to proportional-to-error steering.
	PrevLOSValid bool
	PrevLOSDeg   float64

	Exploded bool
}

func NewTorpedo(id, ownerID string, side Side, def TorpedoDef, x, y, depth, heading, runDepth float64, doctrine GuidanceDoctrine) *Torpedo {
	return &Torpedo{
		ID: id, OwnerID: ownerID, Side: side,
		X: x, Y: y, Depth: depth, Heading: heading,
		Speed:        def.Speed,
		EnableRangeM: def.EnableRangeM,
		SeekerRangeM: def.SeekerRangeM,
		SeekerConeD:  def.SeekerConeDeg,
		MaxRunTimeS:  def.MaxRunTimeS,
		RunDepth:     runDepth,
		Doctrine:     doctrine,
		ProNavN:      TorpedoProportionalNavN,
	}
}
