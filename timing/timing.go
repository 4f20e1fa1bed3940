// Package timing converts tick positions of a decoded document to wall time.
package timing

import (
	"time"

	"github.com/jsphweid/midifile/model"
	"golang.org/x/exp/slices"
)

// DefaultMicrosecondsPerBeat applies until the first tempo event (120 BPM).
const DefaultMicrosecondsPerBeat = 500000

type TempoChange struct {
	Tick                uint64
	MicrosecondsPerBeat uint32
}

// TempoMap holds the tempo changes of a sequence, always starting at tick 0.
type TempoMap struct {
	ticksPerBeat uint16
	changes      []TempoChange
	// wall time at each change
	at           []time.Duration
}

// NewTempoMap merges the setTempo events of every track, as format 0 and 1
// files share one tempo map.
func NewTempoMap(doc *model.Document) *TempoMap {
	var changes []TempoChange
	for _, track := range doc.Tracks {
		changes = append(changes, tempoChanges(track)...)
	}
	return newTempoMap(doc.TicksPerBeat, changes)
}

// NewTrackTempoMap builds the map of a single track. Format 2 tracks are
// independent sequences, each with its own tempo.
func NewTrackTempoMap(track model.Track, ticksPerBeat uint16) *TempoMap {
	return newTempoMap(ticksPerBeat, tempoChanges(track))
}

func tempoChanges(track model.Track) []TempoChange {
	var res []TempoChange
	ticks := track.AbsoluteTicks()
	for i, te := range track {
		e, ok := te.Event.(*model.MetaEvent)
		if !ok {
			continue
		}
		if tempo, ok := e.Payload.(model.Tempo); ok {
			res = append(res, TempoChange{Tick: ticks[i], MicrosecondsPerBeat: tempo.MicrosecondsPerBeat})
		}
	}
	return res
}

func newTempoMap(ticksPerBeat uint16, changes []TempoChange) *TempoMap {
	slices.SortStableFunc(changes, func(a, b TempoChange) bool {
		return a.Tick < b.Tick
	})
	if len(changes) == 0 || changes[0].Tick > 0 {
		changes = append([]TempoChange{{Tick: 0, MicrosecondsPerBeat: DefaultMicrosecondsPerBeat}}, changes...)
	}

	m := &TempoMap{ticksPerBeat: ticksPerBeat, changes: changes, at: make([]time.Duration, len(changes))}
	for i := 1; i < len(changes); i++ {
		prev := changes[i-1]
		m.at[i] = m.at[i-1] + m.span(changes[i].Tick-prev.Tick, prev.MicrosecondsPerBeat)
	}
	return m
}

func (m *TempoMap) span(ticks uint64, microsPerBeat uint32) time.Duration {
	if m.ticksPerBeat == 0 {
		return 0
	}
	ns := float64(ticks) * float64(microsPerBeat) * 1000 / float64(m.ticksPerBeat)
	return time.Duration(ns)
}

func (m *TempoMap) Changes() []TempoChange {
	return m.changes
}

// TimeAt returns the wall time of an absolute tick position.
func (m *TempoMap) TimeAt(tick uint64) time.Duration {
	i := len(m.changes) - 1
	for i > 0 && m.changes[i].Tick > tick {
		i--
	}
	c := m.changes[i]
	return m.at[i] + m.span(tick-c.Tick, c.MicrosecondsPerBeat)
}

// Duration is the wall time of the latest event of the document.
func Duration(doc *model.Document) time.Duration {
	if doc.FormatType == model.MultiTrackAsync {
		var longest time.Duration
		for _, track := range doc.Tracks {
			d := NewTrackTempoMap(track, doc.TicksPerBeat).TimeAt(track.EndTick())
			if d > longest {
				longest = d
			}
		}
		return longest
	}

	var end uint64
	for _, track := range doc.Tracks {
		if t := track.EndTick(); t > end {
			end = t
		}
	}
	return NewTempoMap(doc).TimeAt(end)
}
