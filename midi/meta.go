package midi

import (
	"github.com/jsphweid/midifile/cursor"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
)

func metaSubtypeOf(b byte) model.MetaSubtype {
	switch b {
	case 0x00:
		return model.MetaSequenceNumber
	case 0x01:
		return model.MetaText
	case 0x02:
		return model.MetaCopyrightNotice
	case 0x03:
		return model.MetaTrackName
	case 0x04:
		return model.MetaInstrumentName
	case 0x05:
		return model.MetaLyrics
	case 0x06:
		return model.MetaMarker
	case 0x07:
		return model.MetaCuePoint
	case 0x20:
		return model.MetaMIDIChannelPrefix
	case 0x2F:
		return model.MetaEndOfTrack
	case 0x51:
		return model.MetaSetTempo
	case 0x54:
		return model.MetaSMPTEOffset
	case 0x58:
		return model.MetaTimeSignature
	case 0x59:
		return model.MetaKeySignature
	case 0x7F:
		return model.MetaSequencerSpecific
	}
	return model.MetaUnknown
}

// fixedMetaLength is the body length mandated for fixed-size subtypes; ok is
// false for subtypes with a free-length body.
func fixedMetaLength(s model.MetaSubtype) (n uint32, ok bool) {
	switch s {
	case model.MetaSequenceNumber:
		return 2, true
	case model.MetaMIDIChannelPrefix:
		return 1, true
	case model.MetaEndOfTrack:
		return 0, true
	case model.MetaSetTempo:
		return 3, true
	case model.MetaSMPTEOffset:
		return 5, true
	case model.MetaTimeSignature:
		return 4, true
	case model.MetaKeySignature:
		return 2, true
	}
	return 0, false
}

// keyed by the top three bits of the SMPTE hour byte; bit 7 is reserved
var smpteFrameRates = map[byte]uint8{
	0x00: 24,
	0x20: 25,
	0x40: 29,
	0x60: 30,
}

func readMetaEvent(c *cursor.Cursor) (*model.MetaEvent, error) {
	at := c.Offset()
	typeByte, err := c.PopUint8()
	if err != nil {
		return nil, err
	}
	length, err := c.PopVarUint()
	if err != nil {
		return nil, err
	}

	e := &model.MetaEvent{Subtype: metaSubtypeOf(typeByte), Type: typeByte}
	if want, ok := fixedMetaLength(e.Subtype); ok && want != length {
		return nil, smferr.New(smferr.KindBadMetaEventLength, at,
			"%v expects %d bytes, got %d", e.Subtype, want, length)
	}

	body, err := c.Sub(int(length))
	if err != nil {
		return nil, err
	}
	if e.Payload, err = readMetaPayload(body, e.Subtype); err != nil {
		return nil, err
	}
	return e, nil
}

func readMetaPayload(body *cursor.Cursor, subtype model.MetaSubtype) (model.MetaPayload, error) {
	switch subtype {
	case model.MetaSequenceNumber:
		n, err := body.PopUint16()
		return model.SequenceNumber{Number: n}, err

	case model.MetaText, model.MetaCopyrightNotice, model.MetaTrackName,
		model.MetaInstrumentName, model.MetaLyrics, model.MetaMarker, model.MetaCuePoint:
		s, err := body.PopASCII(body.BytesRemaining())
		return model.Text{Text: s}, err

	case model.MetaMIDIChannelPrefix:
		ch, err := body.PopUint8()
		return model.ChannelPrefix{Channel: ch}, err

	case model.MetaEndOfTrack:
		return model.EndOfTrack{}, nil

	case model.MetaSetTempo:
		var t model.Tempo
		for i := 0; i < 3; i++ {
			b, err := body.PopUint8()
			if err != nil {
				return nil, err
			}
			t.MicrosecondsPerBeat = t.MicrosecondsPerBeat<<8 | uint32(b)
		}
		return t, nil

	case model.MetaSMPTEOffset:
		return readSMPTEOffset(body)

	case model.MetaTimeSignature:
		b, err := body.PopBytes(4)
		if err != nil {
			return nil, err
		}
		return model.TimeSignature{
			Numerator:     b[0],
			Denominator:   b[1],
			Metronome:     b[2],
			ThirtySeconds: b[3],
		}, nil

	case model.MetaKeySignature:
		key, err := body.PopInt8()
		if err != nil {
			return nil, err
		}
		scale, err := body.PopUint8()
		return model.KeySignature{Key: key, Scale: scale}, err

	case model.MetaSequencerSpecific:
		data, err := body.PopBytes(body.BytesRemaining())
		return model.SequencerSpecific{Data: data}, err

	case model.MetaUnknown:
		data, err := body.PopBytes(body.BytesRemaining())
		return model.UnknownMeta{Data: data}, err
	}
	panic("midi: unhandled meta subtype " + subtype.String())
}

func readSMPTEOffset(body *cursor.Cursor) (model.MetaPayload, error) {
	at := body.Offset()
	b, err := body.PopBytes(5)
	if err != nil {
		return nil, err
	}
	rate, ok := smpteFrameRates[b[0]&0xE0]
	if !ok {
		return nil, smferr.New(smferr.KindBadFrameRate, at, "hour byte 0x%02X", b[0])
	}
	return model.SMPTEOffset{
		FrameRate: rate,
		Hour:      b[0] & 0x1F,
		Min:       b[1],
		Sec:       b[2],
		Frame:     b[3],
		Subframe:  b[4],
	}, nil
}
