package constants

import (
	"os"
	"strconv"
)

func GetMidiDir() string {
	path := os.Getenv("MIDI_PATH")
	if path != "" {
		return path
	}
	return "."
}

func GetLogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

func GetMaxUploadBytes() int64 {
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxUploadBytes
}

const DefaultMaxUploadBytes = 16 * 1024 * 1024
