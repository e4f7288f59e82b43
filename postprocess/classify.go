package postprocess

import (
	"fmt"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/modelcfg"
)

// ArgMaxDecode 分类输出取最大概率类别, 只看第一个批次条目.
// 置信度不计算, 固定为 0.
func ArgMaxDecode(output ocreval.Tensor, labels []string) (Result, error) {
	if err := checkShape(output); err != nil {
		return Result{}, err
	}

	numClasses := output.Dim(-1)
	if numClasses == 0 || numClasses > len(output.Data) {
		return Result{}, fmt.Errorf("%w: 不支持的输出形状 %v", ocreval.ErrInference, output.Shape)
	}

	idx, _ := argMax(output.Data[:numClasses])
	if idx >= len(labels) {
		return Result{}, fmt.Errorf("%w: 类别下标 %d 超出标签数量 %d", ocreval.ErrInference, idx, len(labels))
	}
	return Result{Text: labels[idx]}, nil
}

// Decode 按模型类别解码输出
func Decode(output ocreval.Tensor, kind modelcfg.Kind, cfg *modelcfg.ModelConfig) (Result, error) {
	switch kind {
	case modelcfg.KindSequence:
		return CTCDecode(output, cfg.CharacterSet)
	case modelcfg.KindClassification, modelcfg.KindLegacy:
		return ArgMaxDecode(output, cfg.ClassLabels)
	}
	return Result{}, fmt.Errorf("不支持的模型类别: %v", kind)
}
