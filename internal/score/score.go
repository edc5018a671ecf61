// Package score turns a guess, the ground truth, and the round context into
// a deterministic point breakdown. It holds no state and does no I/O.
package score

import "math"

const (
	MaxYearScore     = 5000
	MaxLocationScore = 5000

	earthRadiusMiles = 3958.8
)

type Guess struct {
	Year int
	Lat  float64
	Lng  float64
}

type Truth struct {
	Year int
	Lat  float64
	Lng  float64
}

// Context carries the round timing and the scoring knobs. A zero
// SecondsPerRound means the room is untimed and no bonus applies.
type Context struct {
	SecondsPerRound        int
	TimeTakenSeconds       int
	YearPenaltyPerYear     int
	DistancePenaltyPerMile float64
	TimeBonusPerSecond     int
}

type Breakdown struct {
	YearScore     int
	LocationScore int
	TimeBonus     int
	TotalScore    int
}

// Score is referentially transparent: the same inputs always produce the
// same breakdown. Callers sanitize years and coordinates beforehand.
func Score(guess Guess, truth Truth, ctx Context) Breakdown {
	breakdown := Breakdown{
		YearScore:     yearScore(guess.Year, truth.Year, ctx.YearPenaltyPerYear),
		LocationScore: locationScore(guess, truth, ctx.DistancePenaltyPerMile),
		TimeBonus:     timeBonus(ctx),
	}
	breakdown.TotalScore = breakdown.YearScore + breakdown.LocationScore + breakdown.TimeBonus
	return breakdown
}

func yearScore(guessYear, actualYear, penaltyPerYear int) int {
	diff := guessYear - actualYear
	if diff < 0 {
		diff = -diff
	}
	return clamp(MaxYearScore-diff*penaltyPerYear, 0, MaxYearScore)
}

// locationScore decays linearly with true great-circle distance, so it is
// monotonically decreasing in how far off the guess landed.
func locationScore(guess Guess, truth Truth, penaltyPerMile float64) int {
	distance := DistanceMiles(guess.Lat, guess.Lng, truth.Lat, truth.Lng)
	return clamp(MaxLocationScore-int(math.Round(distance*penaltyPerMile)), 0, MaxLocationScore)
}

func timeBonus(ctx Context) int {
	if ctx.SecondsPerRound <= 0 {
		return 0
	}
	unused := ctx.SecondsPerRound - ctx.TimeTakenSeconds
	if unused < 0 {
		unused = 0
	}
	return unused * ctx.TimeBonusPerSecond
}

// DistanceMiles computes the haversine great-circle distance between two
// points given in degrees.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
