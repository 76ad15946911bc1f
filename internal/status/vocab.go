package status

// Numeric validity bounds shared by the cleaning and validation stages.
// Values outside a bound are nulled, never clamped to the boundary.
const (
	// Lap time bounds in milliseconds. The 30 s floor keeps formation and
	// pit-exit laps recorded in older seasons; safety-car laps between
	// 300 s and 600 s pass cleaning and are flagged by validation instead.
	LapTimeMinMS = 30_000
	LapTimeMaxMS = 600_000

	// Pit stop duration bounds in milliseconds. Below 15 s is
	// world-record territory; beyond 5 min is a repair, not a stop.
	PitStopMinMS = 15_000
	PitStopMaxMS = 300_000

	// GPS coordinate validity bounds.
	LatMin = -90.0
	LatMax = 90.0
	LngMin = -180.0
	LngMax = 180.0
)

// PositionTextDNFCodes are the raw retirement codes carried by the
// results table's positionText column: R=Retired, D=Disqualified,
// E=Excluded, W=Withdrew, F=Failed to qualify, N=Not classified.
// They drive only the coarse interim flag set during cleaning; the
// authoritative is_dnf is recomputed from the status label downstream.
var PositionTextDNFCodes = map[string]bool{
	"R": true,
	"D": true,
	"E": true,
	"W": true,
	"F": true,
	"N": true,
}

// DNFKeywords is the general DNF vocabulary, matched case-insensitively
// as bare substrings against the status label. It covers mechanical
// failures, crashes, disqualifications and administrative non-starts
// across the full ~139-label status table.
var DNFKeywords = []string{
	// Mechanical failures (subset; the full list is MechanicalKeywords)
	"engine", "gearbox", "transmission", "hydraulics", "brakes", "clutch",
	"suspension", "electrical", "oil", "water", "fuel", "tyre", "wheel",
	"exhaust", "power unit", "turbo", "compressor", "pneumatic", "cooling",
	"alternator", "electronics", "driveshaft", "differential", "radiator",
	"vibrations", "battery", "throttle", "fire", "overheating", "ignition",
	"halfshaft", "handling", "steering", "injection", "chassis", "mechanical",
	"magneto", "axle", "power loss", "distributor", "broken wing", "rear wing",
	"front wing", "supercharger", "ers", "undertray", "spark plugs", "track rod",
	"drivetrain", "crankshaft", "cv joint", "brake duct",
	// Crashes / incidents
	"accident", "collision", "spun off", "damage", "puncture",
	// Driver / team decisions
	"retired", "withdrew", "illness", "injury",
	// Driver physical
	"physical", "unwell",
	// Administrative
	"disqualified", "did not", "excluded",
	// Catch-all
	"debris", "safety",
}

// MechanicalKeywords is the mechanical sub-classifier vocabulary.
// Invariant: every mechanical-flavored term in DNFKeywords must also
// appear here, otherwise a mechanical retirement falls through to the
// crash/other checks. Maintained by hand; the package tests enforce the
// overlap between the lists.
var MechanicalKeywords = []string{
	// Powertrain
	"engine", "gearbox", "transmission", "clutch", "turbo", "compressor",
	"supercharger", "throttle", "fuel", "injection", "ignition", "magneto",
	"spark plugs", "distributor", "launch control", "power unit", "ers",
	// Cooling / fluids
	"hydraulics", "oil", "water", "cooling", "overheating", "radiator",
	// Electrical / electronics
	"electrical", "alternator", "electronics", "battery",
	// Suspension / steering / handling
	"suspension", "steering", "handling", "brakes",
	// Drivetrain / axles
	"driveshaft", "differential", "drivetrain", "halfshaft", "axle",
	"cv joint", "track rod",
	// Wheels / tyres / body
	"tyre", "wheel", "exhaust", "pneumatic",
	// Structural / aero
	"chassis", "broken wing", "front wing", "rear wing", "undertray",
	"brake duct", "vibrations", "crankshaft",
	// Misc mechanical catch-alls
	"mechanical", "power loss", "fire",
}

// CrashKeywords is the crash sub-classifier vocabulary. Checked only
// after MechanicalKeywords; a label matching both resolves mechanical.
var CrashKeywords = []string{
	"accident", "collision", "spun off", "damage", "puncture",
}

// FinishKeywords marks classified finishers by literal label content.
var FinishKeywords = []string{"finished"}

// LappedPatterns covers lapped classified finishers: "+1 Lap",
// "+2 Laps", "lapped", "lap down" and variants.
var LappedPatterns = []string{
	"+1 lap", "+2 lap", "+3 lap", "+4 lap", "+5 lap",
	"+6 lap", "+7 lap", "+8 lap", "+9 lap",
	"lapped", "lap down",
}
