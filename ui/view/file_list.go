package view

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/soocke/predict-client/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FileList renders the staged files, one row each with a Remove button.
type FileList interface {
	SetFiles(files []model.SelectedFile)
}

type fileList struct {
	frame    *FrameWidget
	header   *LabelWidget
	rows     []*Window
	onRemove func(int)
}

// NewFileList creates the list frame at row of the root grid.
func NewFileList(row int, onRemove func(index int)) FileList {
	frame := Frame(Borderwidth(1), Relief("groove"))
	Grid(frame, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	header := frame.Label(Txt("No files selected"), Anchor("w"))
	Grid(header, Row(0), Column(0), Sticky("w"), Padx("0.4m"))
	return &fileList{frame: frame, header: header, onRemove: onRemove}
}

func (v *fileList) SetFiles(files []model.SelectedFile) {
	if v == nil || v.frame == nil {
		return
	}
	for _, w := range v.rows {
		Destroy(w)
	}
	v.rows = v.rows[:0]
	if len(files) == 0 {
		v.header.Configure(Txt("No files selected"))
		return
	}
	v.header.Configure(Txt(fmt.Sprintf("%d staged", len(files))))
	for i, f := range files {
		idx := i
		name := v.frame.Label(Txt(fmt.Sprintf("%d. %s", i+1, f.Name)), Anchor("w"))
		size := v.frame.Label(Txt(humanize.Bytes(uint64(f.Size))), Anchor("e"))
		remove := v.frame.Button(Txt("Remove"), Command(func() {
			if v.onRemove != nil {
				v.onRemove(idx)
			}
		}))
		Grid(name, Row(i+1), Column(0), Sticky("we"), Padx("0.4m"))
		Grid(size, Row(i+1), Column(1), Sticky("e"), Padx("0.4m"))
		Grid(remove, Row(i+1), Column(2), Sticky("e"), Padx("0.2m"), Pady("0.1m"))
		v.rows = append(v.rows, name.Window, size.Window, remove.Window)
	}
}
