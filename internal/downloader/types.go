package downloader

import (
	"fmt"
)

type Format struct {
	ID         string
	Resolution string
	Ext        string
}

type Metadata struct {
	Title    string
	Uploader string
	Views    int64
	Likes    int64
}

// Request describes one yt-dlp download. Dest is a path without extension;
// an empty Dest gets a unique name in the temp directory.
type Request struct {
	URL          string
	Selector     string
	Dest         string
	Headers      map[string]string
	ExtractAudio bool
}

type Result struct {
	Path  string
	Title string
	Size  int64
}

// ExtractionError means the backend could not list, describe or fetch the
// media behind URL.
type ExtractionError struct {
	Op  string
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func extractionErr(op, url string, err error) error {
	return &ExtractionError{Op: op, URL: url, Err: err}
}
