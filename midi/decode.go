package midi

import (
	"log/slog"

	"github.com/jsphweid/midifile/cursor"
	"github.com/jsphweid/midifile/logger"
	"github.com/jsphweid/midifile/model"
)

// Decoder turns SMF bytes into a model.Document. It holds no decode state, so
// one Decoder may be shared by concurrent callers.
type Decoder struct {
	log *slog.Logger
}

func NewDecoder(log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{log: log}
}

// Decode parses a complete SMF file. On failure it returns a *smferr.Error
// and no document.
func Decode(buf []byte) (*model.Document, error) {
	return NewDecoder(logger.GetLogger()).Decode(buf)
}

func (d *Decoder) Decode(buf []byte) (*model.Document, error) {
	c := cursor.New(buf)

	header, err := readHeader(c)
	if err != nil {
		return nil, err
	}
	d.log.Info("Read header of midi file",
		"formatType", header.FormatType.String(),
		"trackCount", header.TrackCount,
		"ticksPerBeat", header.TicksPerBeat)

	doc := &model.Document{
		FormatType:   header.FormatType,
		TicksPerBeat: header.TicksPerBeat,
		Tracks:       make([]model.Track, 0, header.TrackCount),
	}
	for i := 0; i < int(header.TrackCount); i++ {
		track, err := readTrack(c)
		if err != nil {
			return nil, err
		}
		d.log.Debug("Read track", "track", i, "events", len(track))
		doc.Tracks = append(doc.Tracks, track)
	}
	if c.BytesRemaining() > 0 {
		d.log.Debug("Ignoring trailing bytes", "bytes", c.BytesRemaining())
	}
	return doc, nil
}
