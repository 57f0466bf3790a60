package simulator

import (
	"math"
	"math/rand"
	"sync"
)

// Scenario is the water quality profile a reading was drawn from.
type Scenario string

const (
	ScenarioPotable Scenario = "potable"
	ScenarioMild    Scenario = "mild"
	ScenarioSevere  Scenario = "severe"
)

// Reading is one simulated probe measurement.
type Reading struct {
	Scenario    Scenario `json:"-"`
	PH          float64  `json:"ph"`
	Turbidity   float64  `json:"turbidity"`
	Chloramines float64  `json:"chloramines"`
}

type interval struct{ lo, hi float64 }

type scenarioProfile struct {
	name   Scenario
	weight float64
	// when two ranges are given one is picked with equal odds
	ph          []interval
	turbidity   []interval
	chloramines []interval
}

var scenarios = []scenarioProfile{
	{
		name:        ScenarioPotable,
		weight:      0.40,
		ph:          []interval{{6.5, 8.5}},
		turbidity:   []interval{{0.5, 4.0}},
		chloramines: []interval{{0.2, 2.0}},
	},
	{
		name:        ScenarioMild,
		weight:      0.35,
		ph:          []interval{{6.0, 6.5}, {8.5, 9.0}},
		turbidity:   []interval{{4.0, 15.0}},
		chloramines: []interval{{0.1, 0.2}, {2.0, 3.0}},
	},
	{
		name:        ScenarioSevere,
		weight:      0.25,
		ph:          []interval{{5.0, 6.0}, {9.0, 10.0}},
		turbidity:   []interval{{15.0, 50.0}},
		chloramines: []interval{{0.0, 0.1}, {3.0, 5.0}},
	},
}

// Generator draws weighted, jittered readings. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator; equal seeds give equal sequences.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Next returns the next reading.
func (g *Generator) Next() Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	profile := g.pick()
	ph := g.draw(profile.ph)
	turbidity := g.draw(profile.turbidity)
	chloramines := g.draw(profile.chloramines)

	return Reading{
		Scenario:    profile.name,
		PH:          round2(ph + g.uniform(-0.2, 0.2)),
		Turbidity:   round2(math.Max(0.1, turbidity+g.uniform(-1.0, 1.0))),
		Chloramines: round2(math.Max(0.0, chloramines+g.uniform(-0.1, 0.1))),
	}
}

func (g *Generator) pick() scenarioProfile {
	r := g.rng.Float64()
	acc := 0.0
	for _, s := range scenarios {
		acc += s.weight
		if r < acc {
			return s
		}
	}
	return scenarios[len(scenarios)-1]
}

func (g *Generator) draw(ranges []interval) float64 {
	iv := ranges[0]
	if len(ranges) > 1 && g.rng.Float64() >= 0.5 {
		iv = ranges[1]
	}
	return g.uniform(iv.lo, iv.hi)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
