// Package smferr holds the fault taxonomy reported by the SMF decoder.
// Every fault is terminal and carries the byte offset where it was detected.
package smferr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindUnexpectedEOF
	KindBadHeaderMagic
	KindBadHeaderLength
	KindUnknownFormatType
	KindUnsupportedTimeDivision
	KindUnexpectedChunkID
	KindTruncatedTrack
	KindBadMetaEventLength
	KindBadFrameRate
	KindMalformedVarInt
	KindNoRunningStatus
	KindUnrecognisedEventType
)

var kindNames = [...]string{
	KindUnknown:                 "unknown",
	KindUnexpectedEOF:           "unexpectedEof",
	KindBadHeaderMagic:          "badHeaderMagic",
	KindBadHeaderLength:         "badHeaderLength",
	KindUnknownFormatType:       "unknownFormatType",
	KindUnsupportedTimeDivision: "unsupportedTimeDivision",
	KindUnexpectedChunkID:       "unexpectedChunkId",
	KindTruncatedTrack:          "truncatedTrack",
	KindBadMetaEventLength:      "badMetaEventLength",
	KindBadFrameRate:            "badFrameRate",
	KindMalformedVarInt:         "malformedVarInt",
	KindNoRunningStatus:         "noRunningStatus",
	KindUnrecognisedEventType:   "unrecognisedEventType",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinels for errors.Is. A *Error unwraps to the sentinel of its kind.
var (
	ErrUnexpectedEOF           = errors.New("unexpected end of buffer")
	ErrBadHeaderMagic          = errors.New("bad header magic")
	ErrBadHeaderLength         = errors.New("bad header length")
	ErrUnknownFormatType       = errors.New("unknown format type")
	ErrUnsupportedTimeDivision = errors.New("unsupported time division")
	ErrUnexpectedChunkID       = errors.New("unexpected chunk id")
	ErrTruncatedTrack          = errors.New("truncated track")
	ErrBadMetaEventLength      = errors.New("bad meta event length")
	ErrBadFrameRate            = errors.New("bad frame rate")
	ErrMalformedVarInt         = errors.New("malformed variable-length quantity")
	ErrNoRunningStatus         = errors.New("no running status")
	ErrUnrecognisedEventType   = errors.New("unrecognised event type")
)

var sentinels = map[Kind]error{
	KindUnexpectedEOF:           ErrUnexpectedEOF,
	KindBadHeaderMagic:          ErrBadHeaderMagic,
	KindBadHeaderLength:         ErrBadHeaderLength,
	KindUnknownFormatType:       ErrUnknownFormatType,
	KindUnsupportedTimeDivision: ErrUnsupportedTimeDivision,
	KindUnexpectedChunkID:       ErrUnexpectedChunkID,
	KindTruncatedTrack:          ErrTruncatedTrack,
	KindBadMetaEventLength:      ErrBadMetaEventLength,
	KindBadFrameRate:            ErrBadFrameRate,
	KindMalformedVarInt:         ErrMalformedVarInt,
	KindNoRunningStatus:         ErrNoRunningStatus,
	KindUnrecognisedEventType:   ErrUnrecognisedEventType,
}

// Error is a decode fault at a byte offset of the input buffer.
type Error struct {
	Kind   Kind
	Offset int
	Detail string
}

// New builds an *Error. Detail is formatted with fmt.Sprintf.
func New(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
