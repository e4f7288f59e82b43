package preprocess

import (
	"fmt"
	"image"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/modelcfg"
)

// Preprocess 按模型类别生成输入张量
func Preprocess(img image.Image, kind modelcfg.Kind, cfg *modelcfg.ModelConfig) (ocreval.Tensor, error) {
	switch kind {
	case modelcfg.KindSequence:
		return Recognizer(img, RecognizerOptions{
			Height:       cfg.ResizeHeight,
			MaxWidth:     cfg.ResizeWidth,
			ChannelOrder: cfg.ChannelOrder,
		})
	case modelcfg.KindClassification:
		return Classifier(img)
	case modelcfg.KindLegacy:
		w, h := legacySize(cfg)
		return Legacy(img, w, h, cfg.ContrastFactor)
	}
	return ocreval.Tensor{}, fmt.Errorf("不支持的模型类别: %v", kind)
}

// legacySize 优先使用 resize 配置, 否则取 NHWC 输入形状中的宽高
func legacySize(cfg *modelcfg.ModelConfig) (w, h int) {
	if cfg.ResizeWidth > 0 && cfg.ResizeHeight > 0 {
		return cfg.ResizeWidth, cfg.ResizeHeight
	}
	if len(cfg.InputShape) == 4 {
		return int(cfg.InputShape[2]), int(cfg.InputShape[1])
	}
	return 0, 0
}
