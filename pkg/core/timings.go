package core

import "math"

// Tuning constants of the adaptive timing formula
const (
	AlphaGreen  = 1.5
	BetaRed     = 5.0
	GammaYellow = 2.0
)

// Timings holds the three phase durations of a signal plan
type Timings struct {
	Green  float64 `yaml:"green" json:"green"`
	Red    float64 `yaml:"red" json:"red"`
	Yellow float64 `yaml:"yellow" json:"yellow"`
}

// DefaultBaseTimings are the base durations the adaptive formula starts from
var DefaultBaseTimings = Timings{Green: 10, Red: 10, Yellow: 3}

// CycleLength returns the sum of the three durations
func (t Timings) CycleLength() float64 {
	return t.Green + t.Red + t.Yellow
}

// TrafficIntensity returns arrivalRate / serviceRate, or 1 when the service
// rate is not positive.
func TrafficIntensity(arrivalRate, serviceRate float64) float64 {
	if serviceRate <= 0 {
		return 1
	}
	return arrivalRate / serviceRate
}

// ComputeAdaptiveTimings derives a signal plan from a queue snapshot and the
// arrival and service rates:
//
//	red    = base.Red + β·ρ
//	green  = base.Green + α·(queue + arrivalRate·red) / serviceRate
//	yellow = base.Yellow + γ·ρ
//
// The unrounded red feeds the green term. A non-positive service rate is
// floored at MinDepartureRate in the green term. Results are rounded to two
// decimals.
func ComputeAdaptiveTimings(queueLength int, arrivalRate, serviceRate float64, base Timings) Timings {
	rho := TrafficIntensity(arrivalRate, serviceRate)
	mu := math.Max(serviceRate, MinDepartureRate)

	red := base.Red + BetaRed*rho
	green := base.Green + AlphaGreen*((float64(queueLength)+arrivalRate*red)/mu)
	yellow := base.Yellow + GammaYellow*rho

	return Timings{
		Green:  round2(green),
		Red:    round2(red),
		Yellow: round2(yellow),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
