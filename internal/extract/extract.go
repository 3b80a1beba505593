// Package extract finds media references inside JSON documents and
// rewrites them against the configured base URLs.
package extract

import (
	"fmt"
	"os"

	"media-harvest/internal/jsontree"
)

// ReadError is returned when a JSON file could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError is returned when a file's content is not valid JSON once
// block comments have been stripped.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing JSON in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract walks the tree and collects every string leaf that names an
// image or video file. Object keys are never considered.
func Extract(root jsontree.Value, bases BaseURLs) *PathSet {
	set := NewPathSet()
	collect(root, bases, set)
	return set
}

func collect(v jsontree.Value, bases BaseURLs, set *PathSet) {
	v.Walk(func(leaf jsontree.Value) {
		if leaf.Kind != jsontree.String {
			return
		}
		if class := Classify(leaf.Str); class != Unknown {
			set.Add(bases.Rewrite(class, BareFilename(leaf.Str)))
		}
	})
}

// ScanBytes strips block comments from data, parses it and extracts
// references. path is only used to label errors.
func ScanBytes(path string, data []byte, bases BaseURLs) (*PathSet, error) {
	root, err := jsontree.Parse(jsontree.StripBlockComments(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return Extract(root, bases), nil
}

// ScanFile reads the file at path and extracts its references.
func ScanFile(path string, bases BaseURLs) (*PathSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	return ScanBytes(path, data, bases)
}
