package model

import "fmt"

type FormatType uint16

const (
	SingleTrack     FormatType = 0
	MultiTrackSync  FormatType = 1
	MultiTrackAsync FormatType = 2
)

func (f FormatType) Valid() bool {
	return f <= MultiTrackAsync
}

func (f FormatType) String() string {
	switch f {
	case SingleTrack:
		return "Single track (0)"
	case MultiTrackSync:
		return "Multi track (1)"
	case MultiTrackAsync:
		return "Multi song (2)"
	}
	return fmt.Sprintf("Unknown format (%d)", uint16(f))
}

type Header struct {
	FormatType   FormatType
	TrackCount   uint16
	TicksPerBeat uint16
}

func (h Header) String() string {
	return fmt.Sprintf("formatType: %v, trackCount: %d, ticksPerBeat: %d",
		h.FormatType, h.TrackCount, h.TicksPerBeat)
}

// Document is a fully decoded Standard MIDI File.
// len(Tracks) always equals the track count declared in the header.
type Document struct {
	FormatType   FormatType
	TicksPerBeat uint16
	Tracks       []Track
}

// Track holds events in decode order, which is also playback order.
type Track []TimedEvent

type TimedEvent struct {
	// ticks since the previous event in the same track
	DeltaTime uint32
	Event     Event
}

// AbsoluteTicks returns, for every event, the ticks since the start of the track.
func (t Track) AbsoluteTicks() []uint64 {
	res := make([]uint64, len(t))
	var abs uint64
	for i, te := range t {
		abs += uint64(te.DeltaTime)
		res[i] = abs
	}
	return res
}

func (t Track) EndTick() uint64 {
	var abs uint64
	for _, te := range t {
		abs += uint64(te.DeltaTime)
	}
	return abs
}
