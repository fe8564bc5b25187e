package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soocke/predict-client/domain/inference"
)

var (
	fileA = SelectedFile{Path: "/data/fileA.txt", Name: "fileA.txt", Size: 10}
	fileB = SelectedFile{Path: "/data/fileB.txt", Name: "fileB.txt", Size: 20}
	fileC = SelectedFile{Path: "/data/fileC.txt", Name: "fileC.txt", Size: 30}
)

func TestUploadModel_MultiAppendsInOrder(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA}, true)
	m.Select([]SelectedFile{fileB, fileA}, true)

	assert.Equal(t, []SelectedFile{fileA, fileB, fileA}, m.Files(), "duplicates are kept")
	assert.Equal(t, 3, m.Len())
}

func TestUploadModel_SingleReplacesSlot(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA}, false)
	m.Select([]SelectedFile{fileB, fileC}, false)

	assert.Equal(t, []SelectedFile{fileB}, m.Files())
}

func TestUploadModel_EmptySelectionKeepsSet(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA}, false)
	m.Select(nil, false)

	assert.Equal(t, 1, m.Len())
}

func TestUploadModel_RemoveShiftsLaterEntries(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA, fileB, fileC}, true)

	assert.True(t, m.Remove(1))
	assert.Equal(t, []SelectedFile{fileA, fileC}, m.Files())
}

func TestUploadModel_RemoveOutOfRangeIsNoop(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA, fileB}, true)

	for _, i := range []int{-1, 2, 99} {
		assert.False(t, m.Remove(i), "index %d", i)
	}
	assert.Equal(t, []SelectedFile{fileA, fileB}, m.Files())
}

func TestUploadModel_RemoveDoesNotAliasCopies(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA, fileB, fileC}, true)
	before := m.Files()

	m.Remove(0)

	assert.Equal(t, []SelectedFile{fileA, fileB, fileC}, before)
}

func TestUploadModel_ClearAndUploads(t *testing.T) {
	m := NewUploadModel()
	m.Select([]SelectedFile{fileA, fileB}, true)

	assert.Equal(t, []inference.Upload{
		{Name: "fileA.txt", Path: "/data/fileA.txt"},
		{Name: "fileB.txt", Path: "/data/fileB.txt"},
	}, m.Uploads())

	m.Clear()
	assert.Zero(t, m.Len())
	assert.Nil(t, m.Uploads())
}

func TestViewerModel_OpenCopiesAndCloseDiscards(t *testing.T) {
	var v ViewerModel
	img := []byte{1, 2, 3}

	assert.True(t, v.Open("fileA.txt", img))
	img[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, v.Image())
	assert.True(t, v.IsOpen())
	assert.Equal(t, "fileA.txt", v.Title())

	assert.True(t, v.Close())
	assert.False(t, v.IsOpen())
	assert.Nil(t, v.Image())
	assert.False(t, v.Close(), "closing twice is a no-op")
}

func TestViewerModel_OpenEmptyIgnored(t *testing.T) {
	var v ViewerModel
	assert.False(t, v.Open("x", nil))
	assert.False(t, v.IsOpen())
}
