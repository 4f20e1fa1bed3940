package cmd

import (
	"fmt"

	"github.com/jsphweid/midifile/model"
	"gitlab.com/gomidi/midi/v2"
)

// channelMessage rebuilds the wire message of a channel event.
func channelMessage(e *model.ChannelEvent) midi.Message {
	switch e.Subtype {
	case model.NoteOff:
		return midi.NoteOffVelocity(e.Channel, e.Note(), e.Velocity())
	case model.NoteOn:
		return midi.NoteOn(e.Channel, e.Note(), e.Velocity())
	case model.NoteAftertouch:
		return midi.PolyAfterTouch(e.Channel, e.Note(), e.Amount())
	case model.Controller:
		return midi.ControlChange(e.Channel, e.Controller(), e.Value())
	case model.ProgramChange:
		return midi.ProgramChange(e.Channel, e.Program())
	case model.ChannelAftertouch:
		return midi.AfterTouch(e.Channel, e.Amount())
	case model.PitchBend:
		return midi.Pitchbend(e.Channel, int16(e.PitchBend())-8192)
	}
	return nil
}

func describeEvent(ev model.Event) string {
	switch e := ev.(type) {
	case *model.ChannelEvent:
		return fmt.Sprintf("%v %v", e.Subtype, channelMessage(e))
	case *model.SysExEvent:
		return fmt.Sprintf("%v [% X]", e.Kind, e.Data)
	case *model.MetaEvent:
		return describeMeta(e)
	}
	return fmt.Sprintf("%v", ev)
}

func describeMeta(e *model.MetaEvent) string {
	switch p := e.Payload.(type) {
	case model.SequenceNumber:
		return fmt.Sprintf("%v %d", e.Subtype, p.Number)
	case model.Text:
		return fmt.Sprintf("%v %q", e.Subtype, p.Text)
	case model.ChannelPrefix:
		return fmt.Sprintf("%v %d", e.Subtype, p.Channel)
	case model.EndOfTrack:
		return e.Subtype.String()
	case model.Tempo:
		return fmt.Sprintf("%v %dus/beat (%.2f bpm)", e.Subtype, p.MicrosecondsPerBeat, p.BPM())
	case model.SMPTEOffset:
		return fmt.Sprintf("%v %02d:%02d:%02d:%02d.%02d @%dfps", e.Subtype, p.Hour, p.Min, p.Sec, p.Frame, p.Subframe, p.FrameRate)
	case model.TimeSignature:
		return fmt.Sprintf("%v %d/%d", e.Subtype, p.Numerator, 1<<p.Denominator)
	case model.KeySignature:
		mode := "major"
		if p.Scale == 1 {
			mode = "minor"
		}
		return fmt.Sprintf("%v %+d %s", e.Subtype, p.Key, mode)
	case model.SequencerSpecific:
		return fmt.Sprintf("%v [% X]", e.Subtype, p.Data)
	case model.UnknownMeta:
		return fmt.Sprintf("%v 0x%02X [% X]", e.Subtype, e.Type, p.Data)
	}
	return e.Subtype.String()
}

// eventParams flattens the decoded fields of an event for JSON output.
func eventParams(ev model.Event) map[string]any {
	switch e := ev.(type) {
	case *model.ChannelEvent:
		switch e.Subtype {
		case model.NoteOff, model.NoteOn:
			return map[string]any{"noteNumber": e.Note(), "velocity": e.Velocity()}
		case model.NoteAftertouch:
			return map[string]any{"noteNumber": e.Note(), "amount": e.Amount()}
		case model.Controller:
			return map[string]any{"controllerType": e.Controller(), "value": e.Value()}
		case model.ProgramChange:
			return map[string]any{"programNumber": e.Program()}
		case model.ChannelAftertouch:
			return map[string]any{"amount": e.Amount()}
		case model.PitchBend:
			return map[string]any{"value": e.PitchBend()}
		}
	case *model.SysExEvent:
		return map[string]any{"data": e.Data}
	case *model.MetaEvent:
		switch p := e.Payload.(type) {
		case model.SequenceNumber:
			return map[string]any{"number": p.Number}
		case model.Text:
			return map[string]any{"text": p.Text}
		case model.ChannelPrefix:
			return map[string]any{"channel": p.Channel}
		case model.Tempo:
			return map[string]any{"microsecondsPerBeat": p.MicrosecondsPerBeat}
		case model.SMPTEOffset:
			return map[string]any{
				"frameRate": p.FrameRate, "hour": p.Hour, "min": p.Min,
				"sec": p.Sec, "frame": p.Frame, "subframe": p.Subframe,
			}
		case model.TimeSignature:
			return map[string]any{
				"numerator": p.Numerator, "denominator": p.Denominator,
				"metronome": p.Metronome, "thirtyseconds": p.ThirtySeconds,
			}
		case model.KeySignature:
			return map[string]any{"key": p.Key, "scale": p.Scale}
		case model.SequencerSpecific:
			return map[string]any{"data": p.Data}
		case model.UnknownMeta:
			return map[string]any{"type": e.Type, "data": p.Data}
		}
	}
	return nil
}

func eventSubtype(ev model.Event) string {
	switch e := ev.(type) {
	case *model.ChannelEvent:
		return e.Subtype.String()
	case *model.SysExEvent:
		return e.Kind.String()
	case *model.MetaEvent:
		return e.Subtype.String()
	}
	return ""
}
