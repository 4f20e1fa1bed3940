package midi

import (
	"os"

	"github.com/jsphweid/midifile/model"
	"github.com/pkg/errors"
)

func ReadMidiFile(filepath string) (*model.Document, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading midi file")
	}

	res, err := Decode(dat)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing midi file %s", filepath)
	}

	return res, nil
}
