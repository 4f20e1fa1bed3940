package midi

import (
	"github.com/jsphweid/midifile/cursor"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
)

const (
	statusMeta         = 0xFF
	statusSysEx        = 0xF0
	statusDividedSysEx = 0xF7
)

const (
	eventNoteOff           = 0x8
	eventNoteOn            = 0x9
	eventNoteAftertouch    = 0xA
	eventController        = 0xB
	eventProgramChange     = 0xC
	eventChannelAftertouch = 0xD
	eventPitchBend         = 0xE
)

func (r *trackReader) readEvent() (model.TimedEvent, error) {
	var te model.TimedEvent

	delta, err := r.c.PopVarUint()
	if err != nil {
		return te, err
	}
	te.DeltaTime = delta

	at := r.c.Offset()
	eventTypeByte, err := r.c.PopUint8()
	if err != nil {
		return te, err
	}

	switch {
	case eventTypeByte == statusMeta:
		te.Event, err = readMetaEvent(r.c)
	case eventTypeByte == statusSysEx:
		te.Event, err = readSysExEvent(r.c, model.SysExWhole)
	case eventTypeByte == statusDividedSysEx:
		te.Event, err = readSysExEvent(r.c, model.SysExDivided)
	case eventTypeByte&0xF0 == 0xF0:
		err = smferr.New(smferr.KindUnrecognisedEventType, at, "system byte 0x%02X", eventTypeByte)
	default:
		te.Event, err = r.readChannelEvent(at, eventTypeByte)
	}
	if err != nil {
		return te, err
	}
	return te, nil
}

func readSysExEvent(c *cursor.Cursor, kind model.SysExKind) (*model.SysExEvent, error) {
	length, err := c.PopVarUint()
	if err != nil {
		return nil, err
	}
	data, err := c.PopBytes(int(length))
	if err != nil {
		return nil, err
	}
	return &model.SysExEvent{Kind: kind, Data: data}, nil
}

func (r *trackReader) readChannelEvent(at int, eventTypeByte byte) (*model.ChannelEvent, error) {
	var statusByte, param1 byte
	if eventTypeByte&0x80 != 0 {
		statusByte = eventTypeByte
		r.runningStatus = statusByte
		p, err := r.c.PopUint8()
		if err != nil {
			return nil, err
		}
		param1 = p
	} else {
		// running status: the byte just read is already the first parameter
		if r.runningStatus == 0 {
			return nil, smferr.New(smferr.KindNoRunningStatus, at,
				"data byte 0x%02X with no previous status byte in track", eventTypeByte)
		}
		statusByte = r.runningStatus
		param1 = eventTypeByte
	}

	e := &model.ChannelEvent{
		Channel: statusByte & 0x0F,
		Data1:   param1,
	}
	eventType := statusByte >> 4

	switch eventType {
	case eventNoteOff:
		e.Subtype = model.NoteOff
	case eventNoteOn:
		e.Subtype = model.NoteOn
	case eventNoteAftertouch:
		e.Subtype = model.NoteAftertouch
	case eventController:
		e.Subtype = model.Controller
	case eventProgramChange:
		e.Subtype = model.ProgramChange
		return e, nil
	case eventChannelAftertouch:
		e.Subtype = model.ChannelAftertouch
		return e, nil
	case eventPitchBend:
		e.Subtype = model.PitchBend
	default:
		return nil, smferr.New(smferr.KindUnrecognisedEventType, at, "event type 0x%X", eventType)
	}

	param2, err := r.c.PopUint8()
	if err != nil {
		return nil, err
	}
	e.Data2 = param2
	if e.Subtype == model.NoteOn && param2 == 0 {
		e.Subtype = model.NoteOff
	}
	return e, nil
}
