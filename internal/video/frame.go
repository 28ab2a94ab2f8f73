package video

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"nudge/internal/compose"
)

// Script is the text shown and spoken in the video.
type Script = compose.Script

const (
	titleOffsetX = 300
	titleTop     = 50
	linesOffsetX = 200
	linesTop     = 150
	lineSpacing  = 50
)

// RenderFrame draws the vertical gradient background and script text.
func RenderFrame(script Script, width, height int, face font.Face) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		level := uint8(255 * (height - y) / height / 2)
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			px[0], px[1], px[2], px[3] = 0, level, level, 0xff
		}
	}

	if face == nil {
		face = basicfont.Face7x13
	}
	ascent := face.Metrics().Ascent.Ceil()
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(color.White), Face: face}

	drawer.Dot = fixed.P(max(width/2-titleOffsetX, 0), titleTop+ascent)
	drawer.DrawString(script.Title)

	x := max(width/2-linesOffsetX, 0)
	for i, line := range script.Lines {
		if line == "" {
			continue
		}
		drawer.Dot = fixed.P(x, linesTop+i*lineSpacing+ascent)
		drawer.DrawString(line)
	}
	return img
}

// LoadFace parses an OpenType or TrueType font file at the given pixel size.
func LoadFace(path string, size int) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

func savePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
