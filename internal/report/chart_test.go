package report

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

func TestRenderImpactChart(t *testing.T) {
	raw, err := RenderImpactChart("https://example.com", scan.IssuesByImpact{Serious: 1, Critical: 3})
	if err != nil {
		t.Fatalf("RenderImpactChart: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != ChartWidth || b.Dy() != ChartHeight {
		t.Fatalf("bounds: got=%dx%d want=%dx%d", b.Dx(), b.Dy(), ChartWidth, ChartHeight)
	}

	// Critical is the tallest bar, so the pixel just above the baseline in
	// its slot carries the critical color.
	plotW := ChartWidth - marginLeft - marginRight
	slot := plotW / 4
	x := int(marginLeft + slot*3 + slot/2)
	y := int(ChartHeight-marginBottom) - 5
	r, g, bl, _ := img.At(x, y).RGBA()
	want := impactColors[scan.ImpactCritical]
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
		t.Fatalf("pixel at (%d,%d): got=(%d,%d,%d) want=(%d,%d,%d)", x, y, r>>8, g>>8, bl>>8, want.R, want.G, want.B)
	}
}

func TestRenderImpactChartEmpty(t *testing.T) {
	raw, err := RenderImpactChart("empty", scan.IssuesByImpact{})
	if err != nil {
		t.Fatalf("RenderImpactChart: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
}
