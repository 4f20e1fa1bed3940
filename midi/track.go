package midi

import (
	"errors"

	"github.com/jsphweid/midifile/cursor"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/smferr"
)

// trackReader decodes a single MTrk chunk. Its running status register lives
// only as long as the track does.
type trackReader struct {
	c             *cursor.Cursor
	runningStatus byte
}

func readTrack(c *cursor.Cursor) (model.Track, error) {
	start := c.Offset()
	id, err := c.PopASCII(chunkIDLength)
	if err != nil {
		return nil, err
	}
	if id != trackChunkID {
		return nil, smferr.New(smferr.KindUnexpectedChunkID, start, "expected %q, got %q", trackChunkID, id)
	}

	length, err := c.PopUint32()
	if err != nil {
		return nil, err
	}
	if uint64(length) > uint64(c.BytesRemaining()) {
		return nil, smferr.New(smferr.KindUnexpectedEOF, c.Offset(),
			"track declares %d bytes, %d remaining", length, c.BytesRemaining())
	}
	body, err := c.Sub(int(length))
	if err != nil {
		return nil, err
	}

	// We guess about 3 bytes per event.
	track := make(model.Track, 0, length/3)
	r := &trackReader{c: body}
	for !body.IsEndOfFile() {
		te, err := r.readEvent()
		if err != nil {
			return nil, overrun(err)
		}
		track = append(track, te)
	}
	return track, nil
}

// overrun reports running off the end of a track's body as a truncated
// track. The body is always fully present in the buffer, so hitting its end
// means the events need more bytes than the chunk declares.
func overrun(err error) error {
	var e *smferr.Error
	if errors.As(err, &e) && e.Kind == smferr.KindUnexpectedEOF {
		return smferr.New(smferr.KindTruncatedTrack, e.Offset, "event runs past end of track chunk")
	}
	return err
}
