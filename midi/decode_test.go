package midi

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = NewDecoder(slog.New(slog.NewTextHandler(io.Discard, nil)))

func mustDecode(t *testing.T, buf []byte) *model.Document {
	t.Helper()
	doc, err := quiet.Decode(buf)
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc
}

func requireDecodeError(t *testing.T, buf []byte, kind smferr.Kind, offset int) {
	t.Helper()
	doc, err := quiet.Decode(buf)
	assert.Nil(t, doc)
	var e *smferr.Error
	require.True(t, errors.As(err, &e), "got %v", err)
	assert.Equal(t, kind, e.Kind, e.Error())
	assert.Equal(t, offset, e.Offset, e.Error())
}

// This SMF file is the format 1 example from the MIDI file specification.
var exampleFile = []byte{
	// MThd
	0x4d, 0x54, 0x68, 0x64,
	// Chunk length
	0, 0, 0, 6,
	// Format 1
	0, 1,
	// Four tracks
	0, 4,
	// 96 ticks per quarter note
	0, 0x60,
	// Time signature / tempo track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x14,
	// Time signature
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
	// Tempo
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
	// End of track
	0x83, 0, 0xff, 0x2f, 0,
	// First music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x10,
	// Program change, channel 0 to 5
	0, 0xc0, 5,
	// Note 0x4c on, sets running status
	0x81, 0x40, 0x90, 0x4c, 0x20,
	// Note 0x4c off via running status and velocity 0
	0x81, 0x40, 0x4c, 0,
	// End of track
	0, 0xff, 0x2f, 0,
	// Second music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0xf,
	// Program change, channel 1 to 0x2e
	0, 0xc1, 0x2e,
	// Note 0x43 on
	0x60, 0x91, 0x43, 0x40,
	// Note 0x43 off via running status
	0x82, 0x20, 0x43, 0,
	// End of track
	0, 0xff, 0x2f, 0,
	// Third music track
	0x4d, 0x54, 0x72, 0x6b,
	0, 0, 0, 0x15,
	// Program change, channel 2 to 0x46
	0, 0xc2, 0x46,
	// Note 0x30 on
	0, 0x92, 0x30, 0x60,
	// Note 0x3c on via running status
	0, 0x3c, 0x60,
	// Note 0x30 off via running status
	0x83, 0, 0x30, 0,
	// Note 0x3c off via running status
	0, 0x3c, 0,
	// End of track
	0, 0xff, 0x2f, 0,
}

func TestDecodeExampleFile(t *testing.T) {
	doc := mustDecode(t, exampleFile)

	assert := assert.New(t)
	assert.Equal(model.MultiTrackSync, doc.FormatType)
	assert.Equal(uint16(96), doc.TicksPerBeat)
	require.Len(t, doc.Tracks, 4)

	eot := &model.MetaEvent{Subtype: model.MetaEndOfTrack, Type: 0x2F, Payload: model.EndOfTrack{}}

	assert.Equal(model.Track{
		{DeltaTime: 0, Event: &model.MetaEvent{Subtype: model.MetaTimeSignature, Type: 0x58, Payload: model.TimeSignature{
			Numerator: 4, Denominator: 2, Metronome: 24, ThirtySeconds: 8,
		}}},
		{DeltaTime: 0, Event: &model.MetaEvent{Subtype: model.MetaSetTempo, Type: 0x51, Payload: model.Tempo{MicrosecondsPerBeat: 500000}}},
		{DeltaTime: 384, Event: eot},
	}, doc.Tracks[0])

	assert.Equal(model.Track{
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 0, Subtype: model.ProgramChange, Data1: 5}},
		{DeltaTime: 192, Event: &model.ChannelEvent{Channel: 0, Subtype: model.NoteOn, Data1: 0x4c, Data2: 0x20}},
		{DeltaTime: 192, Event: &model.ChannelEvent{Channel: 0, Subtype: model.NoteOff, Data1: 0x4c, Data2: 0}},
		{DeltaTime: 0, Event: eot},
	}, doc.Tracks[1])

	assert.Equal(model.Track{
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 1, Subtype: model.ProgramChange, Data1: 0x2e}},
		{DeltaTime: 0x60, Event: &model.ChannelEvent{Channel: 1, Subtype: model.NoteOn, Data1: 0x43, Data2: 0x40}},
		{DeltaTime: 288, Event: &model.ChannelEvent{Channel: 1, Subtype: model.NoteOff, Data1: 0x43, Data2: 0}},
		{DeltaTime: 0, Event: eot},
	}, doc.Tracks[2])

	assert.Equal(model.Track{
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 2, Subtype: model.ProgramChange, Data1: 0x46}},
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 2, Subtype: model.NoteOn, Data1: 0x30, Data2: 0x60}},
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 2, Subtype: model.NoteOn, Data1: 0x3c, Data2: 0x60}},
		{DeltaTime: 384, Event: &model.ChannelEvent{Channel: 2, Subtype: model.NoteOff, Data1: 0x30, Data2: 0}},
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 2, Subtype: model.NoteOff, Data1: 0x3c, Data2: 0}},
		{DeltaTime: 0, Event: eot},
	}, doc.Tracks[3])
}

func TestRunningStatusNoteOnThenZeroVelocity(t *testing.T) {
	doc := mustDecode(t, file(0, 96, track(
		ev(0, 0x90, 60, 100),
		ev(0, 64, 0),
	)))

	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, model.Track{
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 0, Subtype: model.NoteOn, Data1: 60, Data2: 100}},
		{DeltaTime: 0, Event: &model.ChannelEvent{Channel: 0, Subtype: model.NoteOff, Data1: 64, Data2: 0}},
	}, doc.Tracks[0])
}

func TestRunningStatusSurvivesMetaEvents(t *testing.T) {
	doc := mustDecode(t, file(0, 96, track(
		ev(0, 0xB2, 7, 100),
		meta(0, 0x06, 'A'),
		ev(10, 10, 64),
	)))

	assert.Equal(t, &model.ChannelEvent{Channel: 2, Subtype: model.Controller, Data1: 10, Data2: 64},
		doc.Tracks[0][2].Event)
}

func TestChannelMessages(t *testing.T) {
	doc := mustDecode(t, file(0, 480, track(
		ev(0, 0x85, 60, 64),
		ev(1, 0x9F, 61, 127),
		ev(2, 0xA1, 62, 33),
		ev(3, 0xB0, 64, 127),
		ev(4, 0xC9, 25),
		ev(5, 0xD4, 90),
		ev(6, 0xE3, 0x00, 0x40),
		ev(7, 0x7F, 0x7F),
		endOfTrack(0),
	)))

	events := doc.Tracks[0]
	require.Len(t, events, 9)

	assert := assert.New(t)
	assert.Equal(&model.ChannelEvent{Channel: 5, Subtype: model.NoteOff, Data1: 60, Data2: 64}, events[0].Event)
	assert.Equal(&model.ChannelEvent{Channel: 15, Subtype: model.NoteOn, Data1: 61, Data2: 127}, events[1].Event)
	assert.Equal(&model.ChannelEvent{Channel: 1, Subtype: model.NoteAftertouch, Data1: 62, Data2: 33}, events[2].Event)
	assert.Equal(&model.ChannelEvent{Channel: 0, Subtype: model.Controller, Data1: 64, Data2: 127}, events[3].Event)
	assert.Equal(&model.ChannelEvent{Channel: 9, Subtype: model.ProgramChange, Data1: 25}, events[4].Event)
	assert.Equal(&model.ChannelEvent{Channel: 4, Subtype: model.ChannelAftertouch, Data1: 90}, events[5].Event)

	bend := events[6].Event.(*model.ChannelEvent)
	assert.Equal(model.PitchBend, bend.Subtype)
	assert.Equal(uint8(3), bend.Channel)
	assert.Equal(uint16(8192), bend.PitchBend())

	top := events[7].Event.(*model.ChannelEvent)
	assert.Equal(uint16(16383), top.PitchBend())
	assert.Equal(uint32(7), events[7].DeltaTime)
}

func TestMetaEvents(t *testing.T) {
	doc := mustDecode(t, file(1, 96, track(
		meta(0, 0x00, 0x00, 0x07),
		meta(0, 0x01, []byte("hello")...),
		meta(0, 0x02, []byte("(c) 2024")...),
		meta(0, 0x03, []byte("Piano")...),
		meta(0, 0x04, []byte("Grand")...),
		meta(0, 0x05, []byte("la")...),
		meta(0, 0x06, []byte("verse")...),
		meta(0, 0x07, []byte("go")...),
		meta(0, 0x20, 0x09),
		meta(0, 0x51, 0x07, 0xA1, 0x20),
		meta(0, 0x54, 0x40|5, 30, 15, 10, 50),
		meta(0, 0x58, 6, 3, 24, 8),
		meta(0, 0x59, 0xFD, 1),
		meta(0, 0x7F, 0x00, 0x00, 0x41),
		meta(0, 0x21, 0x05),
		meta(0, 0x09, 'a', 'b', 'c'),
		endOfTrack(0),
	)))

	payloads := make([]model.MetaPayload, 0)
	for _, te := range doc.Tracks[0] {
		payloads = append(payloads, te.Event.(*model.MetaEvent).Payload)
	}

	assert.Equal(t, []model.MetaPayload{
		model.SequenceNumber{Number: 7},
		model.Text{Text: "hello"},
		model.Text{Text: "(c) 2024"},
		model.Text{Text: "Piano"},
		model.Text{Text: "Grand"},
		model.Text{Text: "la"},
		model.Text{Text: "verse"},
		model.Text{Text: "go"},
		model.ChannelPrefix{Channel: 9},
		model.Tempo{MicrosecondsPerBeat: 500000},
		model.SMPTEOffset{FrameRate: 29, Hour: 5, Min: 30, Sec: 15, Frame: 10, Subframe: 50},
		model.TimeSignature{Numerator: 6, Denominator: 3, Metronome: 24, ThirtySeconds: 8},
		model.KeySignature{Key: -3, Scale: 1},
		model.SequencerSpecific{Data: []byte{0x00, 0x00, 0x41}},
		model.UnknownMeta{Data: []byte{0x05}},
		model.UnknownMeta{Data: []byte("abc")},
		model.EndOfTrack{},
	}, payloads)

	subtypes := make([]model.MetaSubtype, 0)
	for _, te := range doc.Tracks[0] {
		subtypes = append(subtypes, te.Event.(*model.MetaEvent).Subtype)
	}
	assert.Equal(t, []model.MetaSubtype{
		model.MetaSequenceNumber, model.MetaText, model.MetaCopyrightNotice, model.MetaTrackName,
		model.MetaInstrumentName, model.MetaLyrics, model.MetaMarker, model.MetaCuePoint,
		model.MetaMIDIChannelPrefix, model.MetaSetTempo, model.MetaSMPTEOffset, model.MetaTimeSignature,
		model.MetaKeySignature, model.MetaSequencerSpecific, model.MetaUnknown, model.MetaUnknown,
		model.MetaEndOfTrack,
	}, subtypes)

	unknown := doc.Tracks[0][14].Event.(*model.MetaEvent)
	assert.Equal(t, byte(0x21), unknown.Type)
}

func TestSetTempoOneTwentyBPM(t *testing.T) {
	doc := mustDecode(t, file(0, 96, track(meta(0, 0x51, 0x07, 0xA1, 0x20))))

	tempo := doc.Tracks[0][0].Event.(*model.MetaEvent).Payload.(model.Tempo)
	assert.Equal(t, uint32(500000), tempo.MicrosecondsPerBeat)
	assert.Equal(t, 120.0, tempo.BPM())
}

func TestSMPTEOffsetFrameRates(t *testing.T) {
	for bits, rate := range map[byte]uint8{0x00: 24, 0x20: 25, 0x40: 29, 0x60: 30} {
		doc := mustDecode(t, file(0, 96, track(meta(0, 0x54, bits|23, 59, 59, 29, 99))))
		smpte := doc.Tracks[0][0].Event.(*model.MetaEvent).Payload.(model.SMPTEOffset)
		assert.Equal(t, rate, smpte.FrameRate)
		assert.Equal(t, uint8(23), smpte.Hour)
	}
}

func TestSysExEvents(t *testing.T) {
	doc := mustDecode(t, file(0, 96, track(
		ev(0, 0xF0, 0x03, 0x43, 0x12, 0xF7),
		ev(0, 0xF7, 0x01, 0xF7),
		ev(0, 0xF0, 0x00),
	)))

	assert.Equal(t, model.Track{
		{DeltaTime: 0, Event: &model.SysExEvent{Kind: model.SysExWhole, Data: []byte{0x43, 0x12, 0xF7}}},
		{DeltaTime: 0, Event: &model.SysExEvent{Kind: model.SysExDivided, Data: []byte{0xF7}}},
		{DeltaTime: 0, Event: &model.SysExEvent{Kind: model.SysExWhole, Data: []byte{}}},
	}, doc.Tracks[0])
}

func TestTrackLengthIsAuthoritative(t *testing.T) {
	buf := file(1, 96,
		track(ev(0, 0x90, 60, 100), ev(96, 60, 0), endOfTrack(0)),
		track(endOfTrack(0)),
	)
	// trailing padding after the last chunk
	buf = append(buf, 0, 0, 0, 0)

	doc := mustDecode(t, buf)
	require.Len(t, doc.Tracks, 2)
	assert.Len(t, doc.Tracks[0], 3)
	assert.Len(t, doc.Tracks[1], 1)
}

func TestEmptyTracks(t *testing.T) {
	doc := mustDecode(t, file(1, 96, track(), track()))
	assert.Equal(t, []model.Track{{}, {}}, doc.Tracks)

	doc = mustDecode(t, header(2, 0, 96))
	assert.Equal(t, model.MultiTrackAsync, doc.FormatType)
	assert.Empty(t, doc.Tracks)
}

func TestDecodeErrors(t *testing.T) {
	valid := header(0, 1, 96)

	tests := []struct {
		name   string
		buf    []byte
		kind   smferr.Kind
		offset int
	}{
		{"empty buffer", nil, smferr.KindUnexpectedEOF, 0},
		{"bad magic", append([]byte("RIFF"), valid[4:]...), smferr.KindBadHeaderMagic, 0},
		{"header length 7", append(append([]byte("MThd"), 0, 0, 0, 7), valid[8:]...), smferr.KindBadHeaderLength, 4},
		{"format 3", header(3, 1, 96), smferr.KindUnknownFormatType, 8},
		{"header cut short", valid[:11], smferr.KindUnexpectedEOF, 10},
		{"smpte division", header(0, 1, 0x8000|25), smferr.KindUnsupportedTimeDivision, 12},
		{"smpte division -30", header(0, 1, 0xE250), smferr.KindUnsupportedTimeDivision, 12},
		{"missing track", valid, smferr.KindUnexpectedEOF, 14},
		{"wrong chunk id", append(header(0, 1, 96), chunk("XFIH", nil)...), smferr.KindUnexpectedChunkID, 14},
		{"track longer than file", append(header(0, 1, 96), 'M', 'T', 'r', 'k', 0, 0, 0, 9, 0x00, 0xFF), smferr.KindUnexpectedEOF, 22},
		{"tempo of 2 bytes", file(0, 96, track(meta(0, 0x51, 1, 2))), smferr.KindBadMetaEventLength, 24},
		{"end of track with body", file(0, 96, track(meta(0, 0x2F, 0))), smferr.KindBadMetaEventLength, 24},
		{"key signature of 3 bytes", file(0, 96, track(meta(0, 0x59, 0, 0, 0))), smferr.KindBadMetaEventLength, 24},
		{"reserved smpte bit", file(0, 96, track(meta(0, 0x54, 0x80|1, 0, 0, 0, 0))), smferr.KindBadFrameRate, 26},
		{"overlong delta", file(0, 96, track(ev(0, 0x90, 60, 100), []byte{0x90, 0x80, 0x80, 0x80, 0x00, 60, 0})), smferr.KindMalformedVarInt, 26},
		{"running status first", file(0, 96, track(ev(0, 0x3C, 0x40))), smferr.KindNoRunningStatus, 23},
		{"undefined system byte", file(0, 96, track(ev(0, 0xF4))), smferr.KindUnrecognisedEventType, 23},
		{"system reset byte", file(0, 96, track(ev(0, 0xFE))), smferr.KindUnrecognisedEventType, 23},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			requireDecodeError(t, tc.buf, tc.kind, tc.offset)
		})
	}
}

func TestTruncatedTrack(t *testing.T) {
	// declares 3 bytes but the note on needs 4; the velocity byte that
	// follows belongs to whatever comes after the chunk
	buf := append(header(0, 1, 96), 'M', 'T', 'r', 'k', 0, 0, 0, 3, 0x00, 0x90, 0x3C, 0x64)
	requireDecodeError(t, buf, smferr.KindTruncatedTrack, 25)

	// meta body running past the chunk end
	buf = append(header(0, 1, 96), 'M', 'T', 'r', 'k', 0, 0, 0, 5, 0x00, 0xFF, 0x03, 0x05, 'a', 'b', 'c', 'd', 'e')
	requireDecodeError(t, buf, smferr.KindTruncatedTrack, 26)

	_, err := quiet.Decode(buf)
	assert.True(t, errors.Is(err, smferr.ErrTruncatedTrack))
}

func TestRunningStatusDoesNotCrossTracks(t *testing.T) {
	buf := file(1, 96,
		track(ev(0, 0x90, 60, 100), endOfTrack(0)),
		track(ev(0, 62, 100)),
	)
	requireDecodeError(t, buf, smferr.KindNoRunningStatus, 39)
}

func TestHeaderRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("decode reproduces header fields", prop.ForAll(
		func(format, trackCount, division uint16) bool {
			tracks := make([][]byte, trackCount)
			for i := range tracks {
				tracks[i] = track(endOfTrack(0))
			}
			doc, err := quiet.Decode(file(format, division, tracks...))
			if err != nil {
				return false
			}
			return doc.FormatType == model.FormatType(format) &&
				len(doc.Tracks) == int(trackCount) &&
				doc.TicksPerBeat == division
		},
		gen.UInt16Range(0, 2),
		gen.UInt16Range(0, 16),
		gen.UInt16Range(0, 0x7FFF),
	))
	properties.Property("SMPTE divisions are always rejected", prop.ForAll(
		func(division uint16) bool {
			_, err := quiet.Decode(file(1, division|0x8000, track()))
			return errors.Is(err, smferr.ErrUnsupportedTimeDivision)
		},
		gen.UInt16(),
	))

	properties.TestingRun(t)
}

func TestDeltaTimeRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("delta times survive decoding", prop.ForAll(
		func(deltas []uint32) bool {
			events := make([][]byte, len(deltas))
			for i, d := range deltas {
				events[i] = ev(d, 0xC0, 1)
			}
			doc, err := quiet.Decode(file(0, 96, track(events...)))
			if err != nil || len(doc.Tracks[0]) != len(deltas) {
				return false
			}
			for i, te := range doc.Tracks[0] {
				if te.DeltaTime != deltas[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32Range(0, 0x0FFFFFFF)),
	))

	properties.TestingRun(t)
}

func TestDecodeIsPure(t *testing.T) {
	buf := append([]byte(nil), exampleFile...)
	first := mustDecode(t, buf)
	second := mustDecode(t, buf)
	assert.Equal(t, first, second)
	assert.Equal(t, exampleFile, buf)

	var wg sync.WaitGroup
	docs := make([]*model.Document, 8)
	errs := make([]error, 8)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i], errs[i] = quiet.Decode(buf)
		}(i)
	}
	wg.Wait()

	for i := range docs {
		require.NoError(t, errs[i])
		assert.Equal(t, first, docs[i])
	}
}

func TestDecodedPayloadsDoNotAliasInput(t *testing.T) {
	buf := file(0, 96, track(ev(0, 0xF0, 0x02, 0x01, 0x02)))
	doc := mustDecode(t, buf)

	for i := range buf {
		buf[i] = 0
	}
	assert.Equal(t, []byte{0x01, 0x02}, doc.Tracks[0][0].Event.(*model.SysExEvent).Data)
}
