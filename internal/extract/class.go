package extract

import (
	"fmt"
	"strings"
)

// Class is the media class a reference belongs to, decided by the
// extension the reference ends with.
type Class int

const (
	Unknown Class = iota
	Image
	Video
)

var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	VideoExtensions = []string{".mp4", ".mov"}
)

// Classify reports the class of s. Image extensions are checked before
// video extensions.
func Classify(s string) Class {
	if hasAnySuffix(s, ImageExtensions) {
		return Image
	}
	if hasAnySuffix(s, VideoExtensions) {
		return Video
	}

	return Unknown
}

// BareFilename returns the portion of s after the last '/'.
func BareFilename(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}

	return false
}

func (c Class) String() string {
	switch c {
	case Image:
		return "image"
	case Video:
		return "video"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}
