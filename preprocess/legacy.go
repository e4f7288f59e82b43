package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"github.com/up-zero/gotool/imageutil"

	ocreval "github.com/getcharzp/ocr-eval"
)

// Legacy 单通道字符分类预处理: 灰度, 反色, 缩放到 width x height, 归一化到 [0, 1],
// 再以均值为中心调整对比度并截断. 输出 [1, height, width, 1] (NHWC)
func Legacy(img image.Image, width, height int, contrast float32) (ocreval.Tensor, error) {
	if err := checkImage(img); err != nil {
		return ocreval.Tensor{}, err
	}
	if width <= 0 || height <= 0 {
		return ocreval.Tensor{}, fmt.Errorf("无效的缩放尺寸: %dx%d", width, height)
	}

	gray := imageutil.Grayscale(img)
	gb := gray.Bounds()
	inverted := image.NewGray(image.Rect(0, 0, gb.Dx(), gb.Dy()))
	for y := 0; y < gb.Dy(); y++ {
		row := gray.PixOffset(gb.Min.X, gb.Min.Y+y)
		for x := 0; x < gb.Dx(); x++ {
			inverted.Pix[y*inverted.Stride+x] = 255 - gray.Pix[row+x]
		}
	}

	resized := imageutil.Resize(inverted, width, height)
	rb := resized.Bounds()

	data := make([]float32, width*height)
	var sum float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := color.GrayModel.Convert(resized.At(rb.Min.X+x, rb.Min.Y+y)).(color.Gray).Y
			f := float32(v) / 255.0
			data[y*width+x] = f
			sum += float64(f)
		}
	}

	mean := float32(sum / float64(len(data)))
	for i, v := range data {
		data[i] = clip01((v-mean)*contrast + mean)
	}

	return ocreval.Tensor{
		Shape: []int64{1, int64(height), int64(width), 1},
		Data:  data,
	}, nil
}

func clip01(v float32) float32 {
	return min(max(v, 0), 1)
}
