package imageresolver

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// FirstFrame возвращает первый кадр анимированного GIF в PNG.
// Статичные картинки и нераспознанные форматы возвращаются как есть.
func FirstFrame(raw []byte) ([]byte, bool, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return raw, false, fmt.Errorf("decode config: %w", err)
	}
	if format != "gif" {
		return raw, false, nil
	}

	g, err := gif.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		return raw, false, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) <= 1 {
		return raw, false, nil
	}

	// кадр может быть меньше холста, рисуем его на холст полного размера
	canvas := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	frame := g.Image[0]
	draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

	var out bytes.Buffer
	if err := png.Encode(&out, canvas); err != nil {
		return raw, false, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), true, nil
}
