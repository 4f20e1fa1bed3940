package model

import "fmt"

type Family uint8

const (
	FamilyMeta Family = iota
	FamilySysEx
	FamilyChannel
)

func (f Family) String() string {
	switch f {
	case FamilyMeta:
		return "meta"
	case FamilySysEx:
		return "sysEx"
	case FamilyChannel:
		return "channel"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// Event is one of *MetaEvent, *SysExEvent or *ChannelEvent.
type Event interface {
	Family() Family
	isEvent()
}

type MetaSubtype uint8

const (
	MetaUnknown MetaSubtype = iota
	MetaSequenceNumber
	MetaText
	MetaCopyrightNotice
	MetaTrackName
	MetaInstrumentName
	MetaLyrics
	MetaMarker
	MetaCuePoint
	MetaMIDIChannelPrefix
	MetaEndOfTrack
	MetaSetTempo
	MetaSMPTEOffset
	MetaTimeSignature
	MetaKeySignature
	MetaSequencerSpecific
)

var metaSubtypeNames = [...]string{
	MetaUnknown:           "unknown",
	MetaSequenceNumber:    "sequenceNumber",
	MetaText:              "text",
	MetaCopyrightNotice:   "copyrightNotice",
	MetaTrackName:         "trackName",
	MetaInstrumentName:    "instrumentName",
	MetaLyrics:            "lyrics",
	MetaMarker:            "marker",
	MetaCuePoint:          "cuePoint",
	MetaMIDIChannelPrefix: "midiChannelPrefix",
	MetaEndOfTrack:        "endOfTrack",
	MetaSetTempo:          "setTempo",
	MetaSMPTEOffset:       "smpteOffset",
	MetaTimeSignature:     "timeSignature",
	MetaKeySignature:      "keySignature",
	MetaSequencerSpecific: "sequencerSpecific",
}

func (s MetaSubtype) String() string {
	if int(s) >= len(metaSubtypeNames) {
		return fmt.Sprintf("MetaSubtype(%d)", uint8(s))
	}
	return metaSubtypeNames[s]
}

// MetaEvent is an 0xFF event. Type is the raw subtype byte as found in the
// file; Payload is the decoded body, whose concrete type matches Subtype.
type MetaEvent struct {
	Subtype MetaSubtype
	Type    byte
	Payload MetaPayload
}

func (*MetaEvent) Family() Family { return FamilyMeta }
func (*MetaEvent) isEvent()       {}

type MetaPayload interface {
	isMetaPayload()
}

type SequenceNumber struct {
	Number uint16
}

// Text is the body of every free-text meta event (text, trackName, lyrics...).
type Text struct {
	Text string
}

type ChannelPrefix struct {
	Channel uint8
}

type EndOfTrack struct{}

type Tempo struct {
	MicrosecondsPerBeat uint32
}

func (t Tempo) BPM() float64 {
	if t.MicrosecondsPerBeat == 0 {
		return 0
	}
	return 60000000 / float64(t.MicrosecondsPerBeat)
}

type SMPTEOffset struct {
	FrameRate uint8 // 24, 25, 29 (29.97 drop frame) or 30
	Hour      uint8
	Min       uint8
	Sec       uint8
	Frame     uint8
	Subframe  uint8
}

type TimeSignature struct {
	Numerator     uint8
	// power of two: 2 means a quarter note
	Denominator   uint8
	Metronome     uint8
	ThirtySeconds uint8
}

type KeySignature struct {
	// negative for flats, positive for sharps
	Key   int8
	Scale uint8 // 0 major, 1 minor
}

type SequencerSpecific struct {
	Data []byte
}

// UnknownMeta carries the body of a meta event with an unrecognised type byte.
type UnknownMeta struct {
	Data []byte
}

func (SequenceNumber) isMetaPayload()    {}
func (Text) isMetaPayload()              {}
func (ChannelPrefix) isMetaPayload()     {}
func (EndOfTrack) isMetaPayload()        {}
func (Tempo) isMetaPayload()             {}
func (SMPTEOffset) isMetaPayload()       {}
func (TimeSignature) isMetaPayload()     {}
func (KeySignature) isMetaPayload()      {}
func (SequencerSpecific) isMetaPayload() {}
func (UnknownMeta) isMetaPayload()       {}

type SysExKind uint8

const (
	// SysExWhole is a complete 0xF0 message.
	SysExWhole SysExKind = iota
	// SysExDivided is an 0xF7 continuation or escape packet.
	SysExDivided
)

func (k SysExKind) String() string {
	switch k {
	case SysExWhole:
		return "sysEx"
	case SysExDivided:
		return "dividedSysEx"
	}
	return fmt.Sprintf("SysExKind(%d)", uint8(k))
}

type SysExEvent struct {
	Kind SysExKind
	Data []byte
}

func (*SysExEvent) Family() Family { return FamilySysEx }
func (*SysExEvent) isEvent()       {}

type ChannelSubtype uint8

const (
	NoteOff ChannelSubtype = iota
	NoteOn
	NoteAftertouch
	Controller
	ProgramChange
	ChannelAftertouch
	PitchBend
)

var channelSubtypeNames = [...]string{
	NoteOff:           "noteOff",
	NoteOn:            "noteOn",
	NoteAftertouch:    "noteAftertouch",
	Controller:        "controller",
	ProgramChange:     "programChange",
	ChannelAftertouch: "channelAftertouch",
	PitchBend:         "pitchBend",
}

func (s ChannelSubtype) String() string {
	if int(s) >= len(channelSubtypeNames) {
		return fmt.Sprintf("ChannelSubtype(%d)", uint8(s))
	}
	return channelSubtypeNames[s]
}

// ChannelEvent is a voice message. Data1 and Data2 are the message's data
// bytes; use the accessors for their meaning under each Subtype. For pitch
// bends Data1 is the low and Data2 the high 7 bits.
type ChannelEvent struct {
	Channel uint8
	Subtype ChannelSubtype
	Data1   uint8
	Data2   uint8
}

func (*ChannelEvent) Family() Family { return FamilyChannel }
func (*ChannelEvent) isEvent()       {}

func (e *ChannelEvent) Note() uint8       { return e.Data1 }
func (e *ChannelEvent) Velocity() uint8   { return e.Data2 }
func (e *ChannelEvent) Controller() uint8 { return e.Data1 }
func (e *ChannelEvent) Value() uint8      { return e.Data2 }
func (e *ChannelEvent) Program() uint8    { return e.Data1 }

// Amount is the pressure of an aftertouch message.
func (e *ChannelEvent) Amount() uint8 {
	if e.Subtype == ChannelAftertouch {
		return e.Data1
	}
	return e.Data2
}

// PitchBend returns the 14 bit bend value, 8192 being center.
func (e *ChannelEvent) PitchBend() uint16 {
	return uint16(e.Data1) + uint16(e.Data2)<<7
}
