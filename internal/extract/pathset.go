package extract

import (
	"sort"
)

// Reference is one discovered media reference after rewriting.
type Reference struct {
	URL      string
	Filename string
	Class    Class
}

// BaseURLs holds the prefixes prepended to image and video filenames.
// Either may be empty.
type BaseURLs struct {
	Image string
	Video string
}

// Rewrite builds the reference for a filename of the given class. The
// base is used verbatim, so an empty base yields "/" + filename.
func (b BaseURLs) Rewrite(class Class, filename string) Reference {
	base := b.Image
	if class == Video {
		base = b.Video
	}

	return Reference{
		URL:      base + "/" + filename,
		Filename: filename,
		Class:    class,
	}
}

// PathSet is a set of references keyed by rewritten URL. It is not safe
// for concurrent mutation.
type PathSet struct {
	refs map[string]Reference
}

func NewPathSet() *PathSet {
	return &PathSet{refs: make(map[string]Reference)}
}

// Add inserts ref, reporting whether it was new.
func (s *PathSet) Add(ref Reference) bool {
	if _, ok := s.refs[ref.URL]; ok {
		return false
	}

	s.refs[ref.URL] = ref
	return true
}

// Merge adds every reference of other into s and returns how many were new.
func (s *PathSet) Merge(other *PathSet) int {
	if other == nil {
		return 0
	}

	added := 0
	for _, ref := range other.refs {
		if s.Add(ref) {
			added++
		}
	}

	return added
}

func (s *PathSet) Len() int {
	return len(s.refs)
}

// References returns the members of the set ordered by URL.
func (s *PathSet) References() []Reference {
	out := make([]Reference, 0, len(s.refs))
	for _, ref := range s.refs {
		out = append(out, ref)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// URLs returns the rewritten URLs of the set in sorted order.
func (s *PathSet) URLs() []string {
	refs := s.References()
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}

	return urls
}
