package preprocess

import (
	"image"
	"math"

	"github.com/nfnt/resize"

	ocreval "github.com/getcharzp/ocr-eval"
)

const (
	classifierResize = 256
	classifierCrop   = 224
)

// ImageNet 均值与标准差 (RGB)
var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Classifier 图像分类预处理: 短边缩放到 256, 中心裁剪 224x224,
// 按 ImageNet 均值方差归一化, 输出 [1, 3, 224, 224]
func Classifier(img image.Image) (ocreval.Tensor, error) {
	if err := checkImage(img); err != nil {
		return ocreval.Tensor{}, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	newW, newH := classifierResize, classifierResize
	if w < h {
		newH = max(h*classifierResize/w, classifierCrop)
	} else {
		newW = max(w*classifierResize/h, classifierCrop)
	}
	resized := resize.Resize(uint(newW), uint(newH), img, resize.Bilinear)

	rb := resized.Bounds()
	left := rb.Min.X + int(math.Round(float64(rb.Dx()-classifierCrop)/2))
	top := rb.Min.Y + int(math.Round(float64(rb.Dy()-classifierCrop)/2))

	area := classifierCrop * classifierCrop
	data := make([]float32, 3*area)
	for y := 0; y < classifierCrop; y++ {
		for x := 0; x < classifierCrop; x++ {
			r, g, b, _ := resized.At(left+x, top+y).RGBA()
			idx := y*classifierCrop + x
			data[idx] = normalizeImageNet(r, 0)
			data[area+idx] = normalizeImageNet(g, 1)
			data[2*area+idx] = normalizeImageNet(b, 2)
		}
	}

	return ocreval.Tensor{
		Shape: []int64{1, 3, classifierCrop, classifierCrop},
		Data:  data,
	}, nil
}

func normalizeImageNet(v uint32, c int) float32 {
	return (float32(v>>8)/255.0 - imageNetMean[c]) / imageNetStd[c]
}
