package domain

import (
	"net/url"
	"path/filepath"
)

// Download is the result of fetching one media URL: a file sitting in
// the download root plus the display title it was saved under.
type Download struct {
	Path  string // absolute path under the download root
	Title string
	Size  int64 // bytes, 0 if unknown
}

// Name returns the file's basename.
func (d *Download) Name() string {
	return filepath.Base(d.Path)
}

// PublicURL returns the browser-addressable reference for a downloaded
// file: its absolute path, percent-encoded (slashes preserved), behind
// the /file= route.
func (d *Download) PublicURL() string {
	u := url.URL{Path: d.Path}
	return "/file=" + u.EscapedPath()
}

// FileDescriptor is the gradio-compatible shape returned by the
// prediction route's first data element.
type FileDescriptor struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Describe builds the descriptor for a completed download.
func (d *Download) Describe() FileDescriptor {
	return FileDescriptor{
		Name: d.Name(),
		Path: d.Path,
		URL:  d.PublicURL(),
	}
}
