package view

import (
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FileDialog opens the native open-file dialog restricted (advisorily) to
// the configured extensions.
type FileDialog struct {
	Extensions []string
}

// PickFiles shows the dialog. It returns nil when the user cancels.
func (d FileDialog) PickFiles(multi bool) []string {
	exts := d.Extensions
	if len(exts) == 0 {
		exts = []string{".txt"}
	}
	types := []FileType{
		{TypeName: strings.ToUpper(strings.TrimPrefix(exts[0], ".")) + " files", Extensions: exts},
		{TypeName: "All files", Extensions: []string{"*"}},
	}
	title := "Select file"
	if multi {
		title = "Select files"
	}
	return GetOpenFile(Title(title), Multiple(multi), Filetypes(types))
}
