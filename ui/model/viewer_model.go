package model

// ViewerModel is the enlarged-image overlay state: closed, or open with a
// private copy of the image bytes.
type ViewerModel struct {
	image []byte
	title string
	open  bool
}

// Open shows img. The bytes are copied; an empty image is ignored.
func (m *ViewerModel) Open(title string, img []byte) bool {
	if m == nil || len(img) == 0 {
		return false
	}
	m.image = append([]byte(nil), img...)
	m.title = title
	m.open = true
	return true
}

// Close discards the image. Closing a closed viewer is a no-op.
func (m *ViewerModel) Close() bool {
	if m == nil || !m.open {
		return false
	}
	m.image = nil
	m.title = ""
	m.open = false
	return true
}

func (m *ViewerModel) IsOpen() bool { return m != nil && m.open }

// Image returns the open image, or nil when closed.
func (m *ViewerModel) Image() []byte {
	if m == nil {
		return nil
	}
	return m.image
}

func (m *ViewerModel) Title() string {
	if m == nil {
		return ""
	}
	return m.title
}
