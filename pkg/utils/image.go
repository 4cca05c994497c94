//go:build !test

package utils

import (
	"bytes"
	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"
	"image"
	"image/png"
	"os"
)

// upscale is the integer factor applied before an exported frame is
// encoded, so a clipboard paste or a saved screenshot isn't a blurry
// 160x144 image at full window size.
const upscale = 4

func scaleUp(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*upscale, b.Dy()*upscale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func CopyImage(img image.Image) error {
	err := clipboard.Init()
	if err != nil {
		return err
	}

	var b bytes.Buffer
	if err := png.Encode(&b, scaleUp(img)); err != nil {
		return err
	}

	clipboard.Write(clipboard.FmtImage, b.Bytes())

	return nil
}

func SaveImage(img image.Image) error {
	// ask user where to save the image
	filename, err := dialog.File().Filter("PNG Image", "png").Title("Save Image").Save()
	if err != nil {
		return err
	}

	// does file have a .png extension?
	if len(filename) < 4 || filename[len(filename)-4:] != ".png" {
		filename += ".png"
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, scaleUp(img))
}
