package sim

import "time"

// Tick timing.
const (
	DefaultTickHz = 20
	TickInterval  = time.Second / DefaultTickHz
)

// Sides.
type Side int

const (
	SideBlue Side = iota
	SideRed
)

func (s Side) String() string {
	if s == SideRed {
		return "RED"
	}
	return "BLUE"
}

// Compass/unit conversion.
const (
	KnotsToMetersPerSecond = 0.514444
)

// Sonar constants (original_source/sim/sonar.py, enriched per §4.4).
const (
	BafflesDeg            = 60.0
	AmbientNoiseDB        = 60.0
	ThermoclineLayerAtten = 4.0
	SurfaceBonusDB        = 6.0
	DetectabilityGate     = 0.15
)

// Active ping constants.
const (
	ActivePingCooldownS     = 12.0
	CounterDetectRangeM     = 15000.0
	CounterDetectBearingSig = 2.0
	CounterDetectConfidence = 0.8
	CounterDetectTTLS       = 5.0
)

// Visual detection constants (§4.6).
const (
	VisualScanIntervalS  = 5.0
	VisualMaxRangeM      = 15000.0
	VisualMaxTargetDepth = 5.0
	VisualMaxObserverZ   = 10.0
	VisualMemoryBonus    = 0.2
	VisualMemoryCap      = 0.5
	VisualDetectCap      = 0.95
	VisualCarryOverS     = 30.0
	VisualMemoryGCS      = 120.0
)

// Noise engine per-source dB levels (original_source/sim/noise.py).
const (
	NoiseMastDB          = 60.0
	NoisePumpDB          = 72.0
	NoiseTubeLoadDB      = 62.0
	NoiseTubeFloodDB     = 68.0
	NoiseTubeDoorsDB     = 72.0
	NoiseDepthChargeDB   = 80.0
	NoiseDepthChargeTTLS = 0.5
	NoiseJitterDB        = 0.7
)

// Maintenance task constants (§4.7).
const (
	MaintTaskDeadlineMinS  = 25.0
	MaintTaskDeadlineMaxS  = 45.0
	MaintRespawnMinS       = 60.0
	MaintRespawnMaxS       = 120.0
	MaintProgressRateBase  = 0.2
	MaintCompleteLevelGain = 0.1
	MaintFailingLevelLoss  = 0.05
	MaintFailedLevelLoss   = 0.10
	MaintOkThreshold       = 0.2
)

// Weapon/torpedo constants (§4.3).
const (
	TorpedoProportionalNavN = 3.0
	TorpedoProportionalKErr = 1.0
	TorpedoPreArmSafeRangeM = 300.0
	TorpedoPreArmSafeConeD  = 60.0
	TorpedoPreArmSlewDegS   = 30.0
	TorpedoPostArmSafeRngM  = 200.0
	TorpedoPostArmMinRunS   = 3.0
	TorpedoProximityFuzeM   = 30.0
	TorpedoHullDamageHit    = 0.5
	TorpedoFloodingRateHit  = 2.0
	TorpedoSpoofJitterDegS  = 30.0
	TorpedoSpoofMaxTurnDegS = 10.0
	TorpedoNormalMaxTurnDeg = 20.0
	QuickLaunchDefaultRange = 800.0

	DepthChargeSinkRateMPS  = 5.0
	DepthChargeArriveTolM   = 1.0
	DepthChargeMaxSpread    = 10
	DepthChargeBlastNearM   = 60.0
	DepthChargeBlastFarM    = 120.0
	DepthChargeNearHull     = 0.40
	DepthChargeFarHull      = 0.15
	DepthChargeNearFlooding = 2.0
	DepthChargeFarFlooding  = 0.5
)

// AI orchestrator cadences and thresholds (§4.9).
const (
	DefaultFleetCadenceS      = 45.0
	DefaultFleetAlertCadenceS = 20.0
	DefaultFleetTriggerConf   = 0.7
	DefaultShipCadenceS       = 20.0
	DefaultShipAlertCadenceS  = 10.0
	DefaultAIHTTPTimeoutS     = 15.0
	ShipAlertRangeM           = 7000.0
	ShipAlertEMCONSustainedS  = 10.0
	RecentRunsRingSize        = 50
	ContactHistoryRingSize    = 100
	ShipContactHistoryWindow  = 6
	FleetIntentHistorySize    = 8
)

// Power allocation.
const PowerBudgetTolerance = 1e-6
const PowerBudgetRejectTolerance = 1.000001

// Telemetry back-pressure (§5, §9): bounded per-subscriber queues, drop
// oldest message when full.
const TelemetryQueueSize = 100
