package assets

import "testing"

func TestIconDecodes(t *testing.T) {
	img, err := Icon()
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("expected 32x32 icon, got %v", b)
	}
}
