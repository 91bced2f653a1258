package sim

// DepthCharge is owned by the World from drop. It detonates on reaching its
// target depth; there is no floor timeout, and an exploded charge stays in
// World.DepthCharges flagged Exploded.
type DepthCharge struct {
	ID      string
	OwnerID string
	Side    Side

	X, Y        float64
	Depth       float64
	TargetDepth float64
	SinkRateMPS float64

	Armed    bool
	Exploded bool
}

func NewDepthCharge(id, ownerID string, side Side, x, y, targetDepth float64) *DepthCharge {
	return &DepthCharge{
		ID: id, OwnerID: ownerID, Side: side,
		X: x, Y: y, TargetDepth: targetDepth,
		SinkRateMPS: DepthChargeSinkRateMPS,
		Armed:       true,
	}
}
