package midi

import (
	"github.com/jsphweid/midifile/cursor"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
)

const (
	headerChunkID = "MThd"
	headerLength  = 6
	smpteDivision = 0x8000
	trackChunkID  = "MTrk"
	chunkIDLength = 4
)

func readHeader(c *cursor.Cursor) (model.Header, error) {
	var h model.Header

	start := c.Offset()
	id, err := c.PopASCII(chunkIDLength)
	if err != nil {
		return h, err
	}
	if id != headerChunkID {
		return h, smferr.New(smferr.KindBadHeaderMagic, start, "expected %q, got %q", headerChunkID, id)
	}

	lengthAt := c.Offset()
	length, err := c.PopUint32()
	if err != nil {
		return h, err
	}
	if length != headerLength {
		return h, smferr.New(smferr.KindBadHeaderLength, lengthAt, "expected %d, got %d", headerLength, length)
	}

	formatAt := c.Offset()
	format, err := c.PopUint16()
	if err != nil {
		return h, err
	}
	h.FormatType = model.FormatType(format)
	if !h.FormatType.Valid() {
		return h, smferr.New(smferr.KindUnknownFormatType, formatAt, "format type %d", format)
	}

	if h.TrackCount, err = c.PopUint16(); err != nil {
		return h, err
	}

	divisionAt := c.Offset()
	division, err := c.PopUint16()
	if err != nil {
		return h, err
	}
	if division&smpteDivision != 0 {
		return h, smferr.New(smferr.KindUnsupportedTimeDivision, divisionAt,
			"SMPTE time division 0x%04X", division)
	}
	h.TicksPerBeat = division

	return h, nil
}
