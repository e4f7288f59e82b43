package preprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	ocreval "github.com/getcharzp/ocr-eval"
)

// 文本识别模型默认输入尺寸
const (
	RecognizerHeight   = 48
	RecognizerMaxWidth = 320
)

// RecognizerOptions 文本识别预处理参数
type RecognizerOptions struct {
	Height       int
	MaxWidth     int
	ChannelOrder string // bgr (默认) | rgb
}

func (o RecognizerOptions) withDefaults() RecognizerOptions {
	if o.Height <= 0 {
		o.Height = RecognizerHeight
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = RecognizerMaxWidth
	}
	if o.ChannelOrder == "" {
		o.ChannelOrder = "bgr"
	}
	return o
}

// ScaledWidth 按目标高度等比缩放后的宽度
func ScaledWidth(width, height, targetHeight int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	ratio := float64(width) / float64(height)
	return int(math.Round(float64(targetHeight) * ratio))
}

// SegmentCount 宽图切分的段数, 至少为 1
func SegmentCount(scaledWidth, maxWidth int) int {
	if scaledWidth <= maxWidth {
		return 1
	}
	return (scaledWidth + maxWidth - 1) / maxWidth
}

// Recognizer 文本识别预处理.
// 高度缩放到 Height, 宽度超过 MaxWidth 时从左到右切成多段, 不足部分右侧补零,
// 输出 [N, 3, Height, MaxWidth], 数值归一化到 [-1, 1].
func Recognizer(img image.Image, opts RecognizerOptions) (ocreval.Tensor, error) {
	if err := checkImage(img); err != nil {
		return ocreval.Tensor{}, err
	}
	opts = opts.withDefaults()
	targetH, targetW := opts.Height, opts.MaxWidth

	src := img.Bounds()
	scaledW := ScaledWidth(src.Dx(), src.Dy(), targetH)
	n := SegmentCount(scaledW, targetW)

	area := targetH * targetW
	data := make([]float32, n*3*area)
	pad := normalizeRec(0)
	for i := range data {
		data[i] = pad
	}

	if scaledW > 0 {
		scaled := image.NewRGBA(image.Rect(0, 0, scaledW, targetH))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), img, src, draw.Src, nil)

		// RGBA 像素内偏移, 按输出通道顺序排列
		order := [3]int{2, 1, 0}
		if opts.ChannelOrder == "rgb" {
			order = [3]int{0, 1, 2}
		}

		for y := 0; y < targetH; y++ {
			row := scaled.Pix[y*scaled.Stride:]
			for x := 0; x < scaledW; x++ {
				seg, sx := x/targetW, x%targetW
				base := seg*3*area + y*targetW + sx
				px := row[x*4 : x*4+4]
				for c := 0; c < 3; c++ {
					data[base+c*area] = normalizeRec(px[order[c]])
				}
			}
		}
	}

	return ocreval.Tensor{
		Shape: []int64{int64(n), 3, int64(targetH), int64(targetW)},
		Data:  data,
	}, nil
}

func normalizeRec(v uint8) float32 {
	return (float32(v)/255.0 - 0.5) / 0.5
}

// Split 将 [N, ...] 张量拆成 N 个批大小为 1 的张量, 共享底层数据
func Split(t ocreval.Tensor) []ocreval.Tensor {
	n := t.Dim(0)
	if n <= 1 {
		return []ocreval.Tensor{t}
	}
	step := len(t.Data) / n
	shape := append([]int64{1}, t.Shape[1:]...)

	parts := make([]ocreval.Tensor, n)
	for i := range parts {
		parts[i] = ocreval.Tensor{Shape: shape, Data: t.Data[i*step : (i+1)*step]}
	}
	return parts
}
