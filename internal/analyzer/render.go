package analyzer

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

const (
	// Title is the page heading
	Title = "AI-Driven Cloud Security Lab Dashboard"

	// Intro is the static introductory text block
	Intro = `A practical lab system that simulates and visualizes security logs from Microsoft Defender for Cloud, enhanced by Power Automate and LLM-inspired analytics.

What does it do?
- Detects and visualizes simulated cyberattacks.
- Maps attack sources geographically.
- Shows attack trends over time.
- Simulates explainable AI-based log classification.

How can it be used?
- As an educational security lab for non-cybersecurity professionals.
- To demonstrate low-code automation using Microsoft Azure + AI.
- To prototype future integration of GPT-based SIEM support.`

	// Footer is the caption under the last region
	Footer = "Dashboard simulation of AI-driven SIEM event management"

	// EmptyMessage replaces the explanation panel when nothing matches
	EmptyMessage = "No matching events for the current filters."

	// DefaultPreviewRows is the number of rows in the table preview
	DefaultPreviewRows = 10
)

// Rationale is the simulated model explanation. It is shown for every
// sampled event regardless of its fields.
var Rationale = []string{
	"Based on IP reputation score.",
	"Known suspicious behavior pattern.",
	"High volume activity within short timeframe.",
	"Originates from high-risk country.",
	"Matches known threat signature database.",
}

// Sampler picks a uniform index in [0, n)
type Sampler interface {
	IntN(n int) int
}

// lockedSampler makes a *rand.Rand safe for a session that renders from
// both its reader loop and the reload broadcast
type lockedSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSampler) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSampler creates a sampler. A zero seed seeds from the clock.
func NewSampler(seed uint64) Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSampler{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Explain samples one event and attaches the static rationale. It returns
// nil for an empty view.
func Explain(events []models.Event, sampler Sampler) *models.Explanation {
	if len(events) == 0 {
		return nil
	}

	rationale := make([]string, len(Rationale))
	copy(rationale, Rationale)
	return &models.Explanation{
		Event:     events[sampler.IntN(len(events))],
		Rationale: rationale,
	}
}

// Renderer turns a table and a selection into a complete view model
type Renderer struct {
	previewRows int
	sampler     Sampler
	now         func() time.Time
}

// NewRenderer creates a renderer. previewRows <= 0 uses DefaultPreviewRows.
func NewRenderer(previewRows int, sampler Sampler) *Renderer {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	if sampler == nil {
		sampler = NewSampler(0)
	}
	return &Renderer{
		previewRows: previewRows,
		sampler:     sampler,
		now:         time.Now,
	}
}

// Render filters the table and derives every view from the filtered events.
// Nothing is cached between calls.
func (r *Renderer) Render(table *models.EventTable, sel models.Selection) models.ViewModel {
	sel = NormalizeSelection(table, sel)
	filtered := Filter(table, sel)

	view := models.ViewModel{
		Title:       Title,
		Intro:       Intro,
		Footer:      Footer,
		Options:     Distinct(table),
		Selection:   sel,
		Total:       len(filtered),
		Preview:     Preview(filtered, r.previewRows),
		Map:         CountByCountry(filtered),
		Trend:       TrendByHour(filtered),
		Severity:    CountBySeverity(filtered),
		Pivot:       PivotCountrySeverity(filtered),
		Explanation: Explain(filtered, r.sampler),
		RenderedAt:  r.now(),
	}
	if view.Explanation == nil {
		view.EmptyMessage = EmptyMessage
	}
	return view
}
