// Package playlist writes the M3U8 playlist listing the videos a run left
// in the output directory.
package playlist

import (
	"fmt"
	"os"

	"github.com/grafov/m3u8"
)

// Build creates a closed VOD media playlist with one entry per URI. The
// durations of harvested videos are unknown, so every entry reports 0.
func Build(uris []string) (*m3u8.MediaPlaylist, error) {
	p, err := m3u8.NewMediaPlaylist(0, uint(len(uris)))
	if err != nil {
		return nil, err
	}
	p.MediaType = m3u8.VOD

	for _, uri := range uris {
		if err := p.Append(uri, 0, ""); err != nil {
			return nil, fmt.Errorf("failed to add %s to playlist: %w", uri, err)
		}
	}
	p.Close()

	return p, nil
}

// Write builds the playlist for uris and writes it to path, replacing any
// previous file.
func Write(path string, uris []string) error {
	p, err := Build(uris)
	if err != nil {
		return err
	}

	return os.WriteFile(path, p.Encode().Bytes(), 0644)
}
