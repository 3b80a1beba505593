package extract_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-harvest/internal/extract"
	"media-harvest/internal/jsontree"
)

var bases = extract.BaseURLs{Image: "https://img.example.com", Video: "https://vid.example.com"}

func mustParse(t *testing.T, doc string) jsontree.Value {
	root, err := jsontree.Parse([]byte(doc))
	require.NoError(t, err)
	return root
}

func Test_Classify(t *testing.T) {
	tests := []struct {
		input    string
		expected extract.Class
	}{
		{"cat.jpg", extract.Image},
		{"a/b/cat.jpeg", extract.Image},
		{"icon.png", extract.Image},
		{"anim.gif", extract.Image},
		{"https://x.io/p/photo.webp", extract.Image},
		{"clip.mp4", extract.Video},
		{"media/clip.mov", extract.Video},
		{"clip.mp4.jpg", extract.Image},
		{"cat.jpg.mp4", extract.Video},
		{"cat.jpg?w=100", extract.Unknown},
		{"CAT.JPG", extract.Unknown},
		{"notes.txt", extract.Unknown},
		{"jpg", extract.Unknown},
		{"", extract.Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extract.Classify(tt.input), "Classify(%q)", tt.input)
	}
}

func Test_BareFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"images/cat.jpg", "cat.jpg"},
		{"cat.jpg", "cat.jpg"},
		{"/abs/path/to/clip.mp4", "clip.mp4"},
		{"https://cdn.example.com/a/b/c.png", "c.png"},
		{"trailing/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extract.BareFilename(tt.input), "BareFilename(%q)", tt.input)
	}
}

func Test_Extract_FindsNestedReferences(t *testing.T) {
	doc := `{
		"title": "A post",
		"cover": "images/cover.jpg",
		"gallery": [
			{"src": "gallery/one.png", "caption": "first"},
			{"src": "gallery/two.webp", "meta": {"thumb": "thumbs/two.gif"}}
		],
		"attachments": {"intro": "videos/intro.mp4", "outro": ["raw/outro.mov"]},
		"count": 4,
		"draft": false,
		"nothing": null,
		"link": "https://example.com/page.html"
	}`

	set := extract.Extract(mustParse(t, doc), bases)

	assert.Equal(t, []string{
		"https://img.example.com/cover.jpg",
		"https://img.example.com/one.png",
		"https://img.example.com/two.gif",
		"https://img.example.com/two.webp",
		"https://vid.example.com/intro.mp4",
		"https://vid.example.com/outro.mov",
	}, set.URLs())
}

func Test_Extract_ReferenceFields(t *testing.T) {
	set := extract.Extract(mustParse(t, `["a/b/clip.mp4"]`), bases)

	refs := set.References()
	require.Len(t, refs, 1)
	assert.Equal(t, extract.Reference{
		URL:      "https://vid.example.com/clip.mp4",
		Filename: "clip.mp4",
		Class:    extract.Video,
	}, refs[0])
}

func Test_Extract_EmptyBaseURL(t *testing.T) {
	set := extract.Extract(mustParse(t, `{"p": "images/cat.jpg", "v": "x/dog.mov"}`), extract.BaseURLs{})

	assert.Equal(t, []string{"/cat.jpg", "/dog.mov"}, set.URLs())
}

func Test_Extract_IgnoresObjectKeys(t *testing.T) {
	set := extract.Extract(mustParse(t, `{"key.jpg": "value", "nested": {"clip.mp4": 1}}`), bases)

	assert.Equal(t, 0, set.Len())
}

func Test_Extract_DeduplicatesWithinDocument(t *testing.T) {
	doc := `["a/cat.jpg", "b/cat.jpg", "cat.jpg", {"x": "https://other/cat.jpg"}]`

	set := extract.Extract(mustParse(t, doc), bases)

	assert.Equal(t, []string{"https://img.example.com/cat.jpg"}, set.URLs())
}

func Test_Extract_Idempotent(t *testing.T) {
	root := mustParse(t, `{"a": ["x/1.jpg", "y/2.mp4"], "b": {"c": "z/3.png"}}`)

	first := extract.Extract(root, bases)
	second := extract.Extract(root, bases)

	assert.Equal(t, first.URLs(), second.URLs())
	assert.Equal(t, 3, first.Len())
}

func Test_PathSet_MergeIsUnion(t *testing.T) {
	a := extract.Extract(mustParse(t, `["one/cat.jpg", "clip.mp4"]`), bases)
	b := extract.Extract(mustParse(t, `["two/cat.jpg", "dog.png"]`), bases)

	global := extract.NewPathSet()
	assert.Equal(t, 2, global.Merge(a))
	assert.Equal(t, 1, global.Merge(b))
	assert.Equal(t, 0, global.Merge(nil))

	assert.Equal(t, 3, global.Len())
	assert.Equal(t, []string{
		"https://img.example.com/cat.jpg",
		"https://img.example.com/dog.png",
		"https://vid.example.com/clip.mp4",
	}, global.URLs())
}

func Test_Extract_DuplicateKeyLastValueWins(t *testing.T) {
	set := extract.Extract(mustParse(t, `{"a": "x.jpg", "a": "y.jpg"}`), bases)
	assert.Equal(t, []string{"https://img.example.com/y.jpg"}, set.URLs())
}

func Test_ScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.json")
	require.NoError(t, os.WriteFile(path, []byte(`/* exported */ {"img": "images/cat.jpg"}`), 0644))

	set, err := extract.ScanFile(path, extract.BaseURLs{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/cat.jpg"}, set.URLs())
}

func Test_ScanFile_ParseErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"img": "cat.jpg",`), 0644))

	set, err := extract.ScanFile(path, bases)
	assert.Nil(t, set)

	var parseErr *extract.ParseError
	require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
	assert.Equal(t, path, parseErr.Path)
	assert.Contains(t, err.Error(), "broken.json")
}

func Test_ScanBytes_TooDeepIsParseError(t *testing.T) {
	data := []byte(strings.Repeat("[", jsontree.MaxDepth+1) + `"cat.jpg"` + strings.Repeat("]", jsontree.MaxDepth+1))

	_, err := extract.ScanBytes("deep.json", data, bases)

	var parseErr *extract.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "deep.json", parseErr.Path)
	assert.ErrorIs(t, err, jsontree.ErrTooDeep)
}

func Test_ScanFile_ReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := extract.ScanFile(path, bases)

	var readErr *extract.ReadError
	require.True(t, errors.As(err, &readErr), "expected ReadError, got %T", err)
	assert.Equal(t, path, readErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
