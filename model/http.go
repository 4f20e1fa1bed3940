package model

type DecodeResponse struct {
	RequestId    string          `json:"requestId"`
	FormatType   uint16          `json:"formatType"`
	TicksPerBeat uint16          `json:"ticksPerBeat"`
	DurationMs   int64           `json:"durationMs"`
	Tracks       []TrackResponse `json:"tracks"`
}

type TrackResponse struct {
	Events []EventResponse `json:"events"`
}

type EventResponse struct {
	DeltaTime uint32         `json:"deltaTime"`
	Tick      uint64         `json:"tick"`
	Type      string         `json:"type"`
	Subtype   string         `json:"subtype"`
	Channel   *uint8         `json:"channel,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
	Offset *int   `json:"offset,omitempty"`
}
