package report

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
)

const (
	ChartWidth  = 800
	ChartHeight = 480

	marginLeft   = 60.0
	marginRight  = 30.0
	marginTop    = 70.0
	marginBottom = 60.0
)

var impactColors = map[scan.Impact]color.NRGBA{
	scan.ImpactMinor:    {R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	scan.ImpactModerate: {R: 0xff, G: 0xc1, B: 0x07, A: 0xff},
	scan.ImpactSerious:  {R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	scan.ImpactCritical: {R: 0xf4, G: 0x43, B: 0x36, A: 0xff},
}

var (
	fontOnce  sync.Once
	fontErr   error
	parsedTTF *truetype.Font
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", fontErr)
	}
	return truetype.NewFace(parsedTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// RenderImpactChart draws one bar per impact level, least to most urgent,
// and returns the PNG bytes.
func RenderImpactChart(title string, counts scan.IssuesByImpact) ([]byte, error) {
	titleFace, err := face(22)
	if err != nil {
		return nil, err
	}
	labelFace, err := face(14)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(ChartWidth, ChartHeight)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetFontFace(titleFace)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, ChartWidth/2, marginTop/2, 0.5, 0.5)

	plotW := ChartWidth - marginLeft - marginRight
	plotH := ChartHeight - marginTop - marginBottom
	baseY := marginTop + plotH

	maxCount := 0
	for _, impact := range scan.Impacts {
		if n := counts.Get(impact); n > maxCount {
			maxCount = n
		}
	}
	scale := 0.0
	if maxCount > 0 {
		scale = plotH / float64(maxCount)
	}

	dc.SetLineWidth(1)
	dc.SetColor(color.Gray{Y: 0x99})
	dc.DrawLine(marginLeft, baseY, marginLeft+plotW, baseY)
	dc.Stroke()

	dc.SetFontFace(labelFace)
	slot := plotW / float64(len(scan.Impacts))
	barW := slot * 0.6
	for i, impact := range scan.Impacts {
		n := counts.Get(impact)
		x := marginLeft + slot*float64(i) + (slot-barW)/2
		h := float64(n) * scale

		dc.SetColor(impactColors[impact])
		dc.DrawRectangle(x, baseY-h, barW, h)
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(strconv.Itoa(n), x+barW/2, baseY-h-10, 0.5, 0)
		dc.DrawStringAnchored(string(impact), x+barW/2, baseY+20, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
