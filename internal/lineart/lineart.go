// Package lineart 把彩色插画转换成可以填色的线稿：
// 灰度 → 3×3 高斯模糊 → Canny 边缘检测 → 2×2 膨胀 → 反色（白底黑线）。
package lineart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/webp"
)

// Canny 阈值固定，不对外开放调整
const (
	LowThreshold  = 50
	HighThreshold = 150
)

// MaxPixels 单张图片允许的最大像素数，超出的图片在分配像素前就被拒绝
const MaxPixels = 2 * 89_478_485

// ErrTooLarge 图片头声明的尺寸无效或超过 MaxPixels
var ErrTooLarge = errors.New("image dimensions out of range")

// Decode 解码 png / jpeg / gif / webp 图片，先读图片头检查尺寸
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Transform 生成与原图同尺寸的线稿
func Transform(src image.Image) *image.Gray {
	out := Dilate2x2(Canny(GaussianBlur3(Grayscale(src)), LowThreshold, HighThreshold))
	Invert(out)
	return out
}

// EncodePNG 以固定参数编码，保证相同输入得到相同字节
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Grayscale 丢弃 alpha 通道后按 BT.601 权重转换为灰度，原点归一到 (0,0)
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x] = uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B) + 500) / 1000)
		}
	}
	return out
}

// GaussianBlur3 3×3 高斯核 [1 2 1]ᵀ[1 2 1]/16，边界按 reflect-101 处理
func GaussianBlur3(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	tmp := make([]int, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			tmp[y*w+x] = int(row[reflect101(x-1, w)]) + 2*int(row[x]) + int(row[reflect101(x+1, w)])
		}
	}
	for y := 0; y < h; y++ {
		up, down := reflect101(y-1, h), reflect101(y+1, h)
		for x := 0; x < w; x++ {
			sum := tmp[up*w+x] + 2*tmp[y*w+x] + tmp[down*w+x]
			out.Pix[y*out.Stride+x] = uint8((sum + 8) >> 4)
		}
	}
	return out
}

// Dilate2x2 2×2 结构元素、锚点在 (1,1)、迭代一次的膨胀
func Dilate2x2(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			for dy := -1; dy <= 0; dy++ {
				for dx := -1; dx <= 0; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || yy < 0 {
						continue
					}
					if p := src.Pix[yy*src.Stride+xx]; p > v {
						v = p
					}
				}
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

// Invert 原地反色
func Invert(img *image.Gray) {
	for i, p := range img.Pix {
		img.Pix[i] = 255 - p
	}
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
