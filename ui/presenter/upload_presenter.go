package presenter

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soocke/predict-client/domain/inference"
	"github.com/soocke/predict-client/ui/model"
)

// FilePicker asks the user for files. Multi reports whether more than one
// file may be chosen. An empty result means the dialog was cancelled.
type FilePicker interface {
	PickFiles(multi bool) []string
}

// FileListView renders the staged upload set.
type FileListView interface {
	SetFiles(files []model.SelectedFile)
}

// SubmissionResetter hides any settled submission outcome.
type SubmissionResetter interface{ Reset() }

// UploadPresenter owns the select / remove / clear interactions on the upload set.
type UploadPresenter struct {
	model  *model.UploadModel
	picker FilePicker
	view   FileListView
	reset  SubmissionResetter
	mode   func() inference.Mode
	stat   func(string) (os.FileInfo, error)
	logger *slog.Logger
}

// NewUploadPresenter wires the upload set to its view. mode reports the active mode.
func NewUploadPresenter(m *model.UploadModel, picker FilePicker, view FileListView, reset SubmissionResetter, mode func() inference.Mode, logger *slog.Logger) *UploadPresenter {
	if mode == nil {
		mode = func() inference.Mode { return inference.ModeMulti }
	}
	return &UploadPresenter{model: m, picker: picker, view: view, reset: reset, mode: mode, stat: os.Stat, logger: logger}
}

// Browse opens the picker and stages the chosen files.
func (p *UploadPresenter) Browse() {
	if p == nil || p.picker == nil {
		return
	}
	p.AddPaths(p.picker.PickFiles(p.mode().MultiFile()))
}

// AddPaths stages paths. Unreadable paths are skipped and logged.
func (p *UploadPresenter) AddPaths(paths []string) {
	if p == nil || p.model == nil || len(paths) == 0 {
		return
	}
	files := make([]model.SelectedFile, 0, len(paths))
	for _, path := range paths {
		fi, err := p.stat(path)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("skipping file", "path", path, "error", err)
			}
			continue
		}
		if fi.IsDir() {
			continue
		}
		files = append(files, model.SelectedFile{Path: path, Name: filepath.Base(path), Size: fi.Size()})
	}
	if len(files) == 0 {
		return
	}
	p.model.Select(files, p.mode().MultiFile())
	if p.logger != nil {
		p.logger.Debug("files staged", "added", len(files), "total", p.model.Len())
	}
	p.render()
}

// Remove drops the entry at index. Out of range is ignored.
func (p *UploadPresenter) Remove(index int) {
	if p == nil || p.model == nil {
		return
	}
	if p.model.Remove(index) {
		p.render()
	}
}

// Clear empties the set and resets the submission display in the same step.
func (p *UploadPresenter) Clear() {
	if p == nil || p.model == nil {
		return
	}
	p.model.Clear()
	if p.reset != nil {
		p.reset.Reset()
	}
	p.render()
}

// ModeChanged trims the set to its first entry when switching to a single-slot mode.
func (p *UploadPresenter) ModeChanged(m inference.Mode) {
	if p == nil || p.model == nil || m.MultiFile() || !m.NeedsFiles() || p.model.Len() <= 1 {
		return
	}
	p.model.Select(p.model.Files()[:1], false)
	p.render()
}

func (p *UploadPresenter) render() {
	if p.view != nil {
		p.view.SetFiles(p.model.Files())
	}
}
