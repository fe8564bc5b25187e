package model

import (
	"github.com/soocke/predict-client/domain/inference"
)

// SelectedFile is one staged upload. Entries are replaced, never edited in place.
type SelectedFile struct {
	Path string
	Name string
	Size int64
}

// UploadModel is the ordered set of files staged for the next submission.
// It is mutated on the UI thread only. The zero value is an empty set.
type UploadModel struct {
	files []SelectedFile
}

// NewUploadModel returns an empty set.
func NewUploadModel() *UploadModel { return &UploadModel{} }

// Select stages files. With multi set the files are appended in order
// (duplicates allowed); otherwise the set holds at most the first file.
// An empty selection leaves the set untouched.
func (m *UploadModel) Select(files []SelectedFile, multi bool) {
	if m == nil || len(files) == 0 {
		return
	}
	if !multi {
		m.files = []SelectedFile{files[0]}
		return
	}
	m.files = append(m.files, files...)
}

// Remove drops the entry at index; later entries shift down. Out of range is a no-op.
func (m *UploadModel) Remove(index int) bool {
	if m == nil || index < 0 || index >= len(m.files) {
		return false
	}
	m.files = append(m.files[:index:index], m.files[index+1:]...)
	return true
}

// Clear empties the set.
func (m *UploadModel) Clear() {
	if m == nil {
		return
	}
	m.files = nil
}

// Len returns the number of staged files.
func (m *UploadModel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.files)
}

// Files returns a copy of the staged files.
func (m *UploadModel) Files() []SelectedFile {
	if m == nil || len(m.files) == 0 {
		return nil
	}
	return append([]SelectedFile(nil), m.files...)
}

// Uploads returns the set as inference uploads, in order.
func (m *UploadModel) Uploads() []inference.Upload {
	if m == nil || len(m.files) == 0 {
		return nil
	}
	out := make([]inference.Upload, len(m.files))
	for i, f := range m.files {
		out[i] = inference.Upload{Name: f.Name, Path: f.Path}
	}
	return out
}
