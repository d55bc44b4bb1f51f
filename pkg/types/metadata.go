package types

// FileRef is a release asset on local disk. Size is captured once, before the
// upload session starts, and is not re-read while the file is uploading.
type FileRef struct {
	Path string `json:"path"` // Path passed to the release CLI
	Name string `json:"name"` // Base name shown in progress output
	Size uint64 `json:"size"` // Size in bytes at resolution time
}

// ReleaseRequest describes a release to publish
type ReleaseRequest struct {
	Tag   string    `json:"tag"`
	Title string    `json:"title"`
	Notes string    `json:"notes"`
	Files []FileRef `json:"files"`
}

// TotalSize returns the sum of all file sizes in the request
func (r ReleaseRequest) TotalSize() uint64 {
	var total uint64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// Paths returns the file paths in upload order
func (r ReleaseRequest) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
