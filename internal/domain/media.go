package domain

import (
	"fmt"
	"strings"
)

// MediaType is the media hint supplied with a search request.
type MediaType int

const (
	MediaGeneric MediaType = iota
	MediaMusic
	MediaAudio
	MediaRadio
)

// PlaybackAudio is the only playback type this skill produces.
const PlaybackAudio = "audio"

func (m MediaType) String() string {
	switch m {
	case MediaMusic:
		return "music"
	case MediaAudio:
		return "audio"
	case MediaRadio:
		return "radio"
	case MediaGeneric:
		return "generic"
	default:
		return fmt.Sprintf("MediaType(%d)", int(m))
	}
}

// ParseMediaType maps a request value to a MediaType.
// An empty value means generic.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return MediaGeneric, nil
	case "music":
		return MediaMusic, nil
	case "audio":
		return MediaAudio, nil
	case "radio":
		return MediaRadio, nil
	default:
		return MediaGeneric, fmt.Errorf("unknown media type: %q", s)
	}
}
