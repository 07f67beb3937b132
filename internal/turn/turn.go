// Package turn drives the repeating price-multiplier cycle: N minor
// turns per major turn, each major turn tuned toward a freshly sampled
// target multiplier.
package turn

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/econ"
)

// System holds the cycle state. One minor turn is consumed per
// completed purchase; when the cycle wraps, a new target and curve are
// generated. Not safe for concurrent use — callers serialize.
type System struct {
	cfg config.Turns
	rng *rand.Rand

	major  int
	minor  int // 1-based, in [1, cfg.MinorPerMajor]
	target float64
	curve  []float64 // per-turn multipliers, len == MinorPerMajor
	cumul  []float64 // running product of curve
}

// New creates a turn system at major 1, minor 1 with its first curve
// already generated.
func New(cfg config.Turns, rng *rand.Rand) *System {
	s := &System{cfg: cfg, rng: rng, major: 1, minor: 1}
	s.regenerate()
	return s
}

// Reset returns to major 1, minor 1 and generates a fresh curve.
func (s *System) Reset() {
	s.major = 1
	s.minor = 1
	s.regenerate()
}

// Advance consumes one minor turn. On wrapping past the last minor
// turn it starts a new major turn with a fresh target and curve, and
// reports true.
func (s *System) Advance() bool {
	if s.minor >= s.cfg.MinorPerMajor {
		s.major++
		s.minor = 1
		s.regenerate()
		return true
	}
	s.minor++
	return false
}

// CurrentMultiplier returns the active minor turn's price multiplier.
func (s *System) CurrentMultiplier() float64 {
	return s.curve[s.minor-1]
}

// Major returns the current major turn number (1-based).
func (s *System) Major() int { return s.major }

// Minor returns the current minor turn number (1-based).
func (s *System) Minor() int { return s.minor }

// Target returns the active cycle's target multiplier.
func (s *System) Target() float64 { return s.target }

// Curve returns a copy of the active per-turn multipliers.
func (s *System) Curve() []float64 {
	out := make([]float64, len(s.curve))
	copy(out, s.curve)
	return out
}

// Cumulative returns a copy of the running product of the curve.
func (s *System) Cumulative() []float64 {
	out := make([]float64, len(s.cumul))
	copy(out, s.cumul)
	return out
}

// Info is the turn state in wire form.
type Info struct {
	MajorTurn        int       `json:"major_turn"`
	MinorTurn        int       `json:"minor_turn"`
	MinorTurnsTotal  int       `json:"minor_turns_total"`
	TargetMultiplier float64   `json:"target_multiplier"`
	CurrentMult      float64   `json:"current_multiplier"`
	Curve            []float64 `json:"price_curve"`
	Cumulative       []float64 `json:"cumulative_curve"`
	ProgressRatio    float64   `json:"progress_ratio"`
	Outlook          string    `json:"outlook"`
}

// Info snapshots the turn state for display.
func (s *System) Info() Info {
	return Info{
		MajorTurn:        s.major,
		MinorTurn:        s.minor,
		MinorTurnsTotal:  s.cfg.MinorPerMajor,
		TargetMultiplier: s.target,
		CurrentMult:      s.CurrentMultiplier(),
		Curve:            s.Curve(),
		Cumulative:       s.Cumulative(),
		ProgressRatio:    float64(s.minor) / float64(s.cfg.MinorPerMajor),
		Outlook:          econ.MultiplierOutlook(s.target),
	}
}

// SetCurve replaces the active curve with explicit per-turn multipliers.
// Used by balancing tools and tests; the target becomes the curve's
// final cumulative value.
func (s *System) SetCurve(multipliers []float64) {
	s.curve = make([]float64, len(multipliers))
	copy(s.curve, multipliers)
	s.cumul = cumulative(s.curve)
	s.target = s.cumul[len(s.cumul)-1]
}

// Restore reinstates a saved cycle position and curve.
func (s *System) Restore(major, minor int, target float64, curve []float64) {
	s.major = major
	s.minor = minor
	s.target = target
	s.curve = make([]float64, len(curve))
	copy(s.curve, curve)
	s.cumul = cumulative(s.curve)
}

// regenerate samples a new target and builds the curve toward it.
func (s *System) regenerate() {
	s.target = econ.SampleTargetMultiplier(s.rng, s.cfg.TargetMultiplierMin, s.cfg.TargetMultiplierMax)
	s.curve = s.generateCurve(s.target)
	s.cumul = cumulative(s.curve)

	slog.Debug("new price curve",
		"major_turn", s.major,
		"target", s.target,
		"final", s.cumul[len(s.cumul)-1],
	)
}

// generateCurve builds N per-step multipliers whose product lands near
// the target. Each step takes the root that would reach the target if
// every remaining step matched it, perturbs it, and clamps — keeping
// per-step variance while steering the product. The whole draw repeats
// CurveTrials times and the closest finish wins.
func (s *System) generateCurve(target float64) []float64 {
	n := s.cfg.MinorPerMajor
	var best []float64
	bestErr := math.Inf(1)

	for trial := 0; trial < s.cfg.CurveTrials; trial++ {
		factors := make([]float64, n)
		cum := 1.0

		for i := 0; i < n; i++ {
			remaining := n - i
			ideal := math.Pow(target/cum, 1.0/float64(remaining))

			f := ideal * (s.cfg.PerturbMin + s.rng.Float64()*(s.cfg.PerturbMax-s.cfg.PerturbMin))
			if f < s.cfg.StepClampMin {
				f = s.cfg.StepClampMin
			}
			if f > s.cfg.StepClampMax {
				f = s.cfg.StepClampMax
			}

			factors[i] = f
			cum *= f
		}

		if err := math.Abs(cum - target); err < bestErr {
			bestErr = err
			best = factors
		}
	}

	return best
}

func cumulative(factors []float64) []float64 {
	out := make([]float64, len(factors))
	cum := 1.0
	for i, f := range factors {
		cum *= f
		out[i] = cum
	}
	return out
}
