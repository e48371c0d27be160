package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	frameBlue = color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	dotRed    = color.RGBA{R: 0xe8, G: 0x11, B: 0x23, A: 0xff}
)

// drawIcon paints a dashed selection frame with a record dot in the corner.
func drawIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	const inset, thick = 3, 3
	for i := inset; i < iconSize-inset; i++ {
		if (i/4)%2 == 1 {
			continue
		}
		for t := 0; t < thick; t++ {
			img.SetRGBA(i, inset+t, frameBlue)
			img.SetRGBA(i, iconSize-inset-1-t, frameBlue)
			img.SetRGBA(inset+t, i, frameBlue)
			img.SetRGBA(iconSize-inset-1-t, i, frameBlue)
		}
	}
	dot := image.Rect(iconSize-14, iconSize-14, iconSize-2, iconSize-2)
	draw.Draw(img, dot, image.NewUniform(dotRed), image.Point{}, draw.Src)
	return img
}

// iconPNG returns the tray icon as PNG bytes.
func iconPNG() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, drawIcon())
	return buf.Bytes()
}

// wrapICO embeds a PNG in a single-image ICO container, which is what the
// Windows tray expects.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY; a width of 0 means 256.
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns tray icon bytes in the platform's preferred format.
func Icon() []byte {
	data := iconPNG()
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize)
	}
	return data
}
