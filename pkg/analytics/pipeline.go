package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Lead is the engine's view of a lead: current status plus identity.
type Lead struct {
	ID        int
	Name      string
	Status    string
	CreatedAt time.Time
}

// Activity is a free-text log entry, part of an ascending-by-time sequence.
type Activity struct {
	Action    string
	CreatedAt time.Time
}

// Transition is a structured stage-change event. From is empty for a lead's
// initial stage; To is empty when the lead was deleted.
type Transition struct {
	LeadID     int
	LeadName   string
	From       string
	To         string
	OccurredAt time.Time
}

// Metric is one row of the pipeline report. The output always carries
// exactly one Metric per configured stage, in stage order.
// ConversionRatePercent of the terminal stage is fixed at 0.0: the row set
// stays uniform and serializers never special-case the last stage.
type Metric struct {
	Status                string  `json:"status"`
	LeadCount             int     `json:"leadCount"`
	ConversionRatePercent float64 `json:"conversionRate"`
	AvgDwellDays          float64 `json:"avgTimeInStage"`
}

// Engine computes pipeline metrics over caller-supplied snapshots. It holds
// no mutable state and performs no I/O; concurrent use is safe.
type Engine struct {
	stages []string
	index  map[string]int
}

// NewEngine creates an engine for the given ordered stage list. Order is
// semantically meaningful: it defines each stage's successor for the
// conversion-rate computation.
func NewEngine(stages []string) (*Engine, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one stage")
	}
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("duplicate pipeline stage %q", s)
		}
		index[s] = i
	}
	return &Engine{stages: append([]string(nil), stages...), index: index}, nil
}

// Stages returns the configured stage order.
func (e *Engine) Stages() []string {
	return append([]string(nil), e.stages...)
}

// Compute derives pipeline metrics from the current lead snapshot and the
// owner's structured transition history, which must be sorted ascending by
// occurrence time. Dwell pairs are keyed by lead id: an entry into a stage
// is closed by that same lead's next transition out of it (deletions count
// as leaving).
func (e *Engine) Compute(leads []Lead, transitions []Transition) ([]Metric, error) {
	counts, err := e.countByStage(leads)
	if err != nil {
		return nil, err
	}

	dwellSum := make([]float64, len(e.stages))
	dwellPairs := make([]int, len(e.stages))

	for i, tr := range transitions {
		stageIdx, ok := e.index[tr.To]
		if !ok {
			// Deletion rows and stages from older funnel configurations.
			continue
		}
		for j := i + 1; j < len(transitions); j++ {
			next := transitions[j]
			if next.LeadID != tr.LeadID || next.From != tr.To {
				continue
			}
			if !next.OccurredAt.After(tr.OccurredAt) {
				continue
			}
			dwellSum[stageIdx] += next.OccurredAt.Sub(tr.OccurredAt).Seconds() / secondsPerDay
			dwellPairs[stageIdx]++
			break
		}
	}

	return e.assemble(counts, dwellSum, dwellPairs), nil
}

// ComputeFromActivity derives pipeline metrics from the free-text activity
// log instead of structured transitions. It reconstructs stage entry and
// exit events by substring-matching three marker shapes:
//
//	Lead "<name>" status changed to <Stage>
//	Lead "<name>" status changed from <Stage> to <OtherStage>
//	Lead deleted: <name>
//
// Records matching none of these contribute nothing. The activity sequence
// must be sorted ascending by time; the pairing is a forward scan and is not
// re-sorted here. Known limitation: names containing the marker delimiters
// extract incorrectly, and exit markers are matched by stage alone.
func (e *Engine) ComputeFromActivity(leads []Lead, activities []Activity) ([]Metric, error) {
	counts, err := e.countByStage(leads)
	if err != nil {
		return nil, err
	}

	dwellSum := make([]float64, len(e.stages))
	dwellPairs := make([]int, len(e.stages))

	for stageIdx, stage := range e.stages {
		for i, entry := range activities {
			if !isStageEntry(entry.Action, stage) {
				continue
			}
			name := leadNameFromMarker(entry.Action)
			for j := i + 1; j < len(activities); j++ {
				exit := activities[j]
				if !exit.CreatedAt.After(entry.CreatedAt) {
					continue
				}
				if !isStageExit(exit.Action, stage) && !isDeletionOf(exit.Action, name) {
					continue
				}
				dwellSum[stageIdx] += exit.CreatedAt.Sub(entry.CreatedAt).Seconds() / secondsPerDay
				dwellPairs[stageIdx]++
				break
			}
		}
	}

	return e.assemble(counts, dwellSum, dwellPairs), nil
}

const secondsPerDay = 86400

// countByStage tallies leads per current status. A lead whose status is not
// a configured stage is an invariant violation and fails fast.
func (e *Engine) countByStage(leads []Lead) ([]int, error) {
	counts := make([]int, len(e.stages))
	for _, l := range leads {
		idx, ok := e.index[l.Status]
		if !ok {
			return nil, fmt.Errorf("lead %d has unknown stage %q", l.ID, l.Status)
		}
		counts[idx]++
	}
	return counts, nil
}

func (e *Engine) assemble(counts []int, dwellSum []float64, dwellPairs []int) []Metric {
	metrics := make([]Metric, len(e.stages))
	for i, stage := range e.stages {
		conversion := 0.0
		if i < len(e.stages)-1 && counts[i] > 0 {
			conversion = calculateRate(counts[i+1], counts[i])
		}
		dwell := 0.0
		if dwellPairs[i] > 0 {
			dwell = round2(dwellSum[i] / float64(dwellPairs[i]))
		}
		metrics[i] = Metric{
			Status:                stage,
			LeadCount:             counts[i],
			ConversionRatePercent: conversion,
			AvgDwellDays:          dwell,
		}
	}
	return metrics
}

// calculateRate calculates percentage rate (numerator/denominator * 100)
func calculateRate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	rate := (float64(numerator) / float64(denominator)) * 100
	return round2(rate)
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const (
	statusChangedMarker = "status changed"
	deletedMarker       = "Lead deleted: "
	namePrefix          = `Lead "`
	nameSuffix          = `" status changed`
)

// isStageEntry reports whether the record marks a lead entering the stage,
// either first-time ("status changed to X") or by transition
// ("status changed from Y to X").
func isStageEntry(action, stage string) bool {
	return strings.Contains(action, statusChangedMarker) &&
		strings.HasSuffix(action, " to "+stage)
}

// isStageExit reports whether the record marks some lead leaving the stage.
func isStageExit(action, stage string) bool {
	return strings.Contains(action, "status changed from "+stage+" to ")
}

// isDeletionOf reports whether the record marks the deletion of the named
// lead. An empty name never matches: entry markers without an extractable
// name cannot be correlated with deletions.
func isDeletionOf(action, name string) bool {
	if name == "" {
		return false
	}
	rest, ok := strings.CutPrefix(action, deletedMarker)
	return ok && rest == name
}

// leadNameFromMarker extracts the quoted lead name from a status-change
// marker. Returns "" when the text does not carry one.
func leadNameFromMarker(action string) string {
	suffixAt := strings.Index(action, nameSuffix)
	if suffixAt < 0 || !strings.HasPrefix(action, namePrefix) {
		return ""
	}
	return action[len(namePrefix):suffixAt]
}
