package postprocess

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	ocreval "github.com/getcharzp/ocr-eval"
)

// CTCDecode 对文本识别模型输出做贪心 CTC 解码.
// 输出形状为 [N, T, C] 或 [T, C], 每个批次条目对应一段切图,
// 各段独立解码后按从左到右的顺序拼接.
func CTCDecode(output ocreval.Tensor, charset []string) (Result, error) {
	if len(charset) == 0 {
		return Result{}, fmt.Errorf("%w: 字符集为空", ocreval.ErrInference)
	}

	if err := checkShape(output); err != nil {
		return Result{}, err
	}

	var batch, seqLen, numClasses int
	switch len(output.Shape) {
	case 2:
		batch, seqLen, numClasses = 1, output.Dim(0), output.Dim(1)
	case 3:
		batch, seqLen, numClasses = output.Dim(0), output.Dim(1), output.Dim(2)
	default:
		return Result{}, fmt.Errorf("%w: 不支持的输出形状 %v", ocreval.ErrInference, output.Shape)
	}
	if numClasses == 0 || batch*seqLen*numClasses > len(output.Data) {
		return Result{}, fmt.Errorf("%w: 输出数据长度 %d 与形状 %v 不符", ocreval.ErrInference, len(output.Data), output.Shape)
	}

	segments := make([]Result, batch)
	indices := make([]int, seqLen)
	probs := make([]float32, seqLen)
	for n := 0; n < batch; n++ {
		for i := 0; i < seqLen; i++ {
			start := (n*seqLen + i) * numClasses
			indices[i], probs[i] = argMax(output.Data[start : start+numClasses])
		}
		seg, err := DecodeSequence(indices, probs, charset)
		if err != nil {
			return Result{}, err
		}
		segments[n] = seg
	}

	return JoinSegments(segments), nil
}

// DecodeSequence 单段 CTC 折叠: 跳过空白符 (下标 0) 并重置去重状态,
// 跳过与前一个非空白输出相同的下标
func DecodeSequence(indices []int, probs []float32, charset []string) (Result, error) {
	var sb strings.Builder
	var confs []float64
	prevIdx := -1

	for i, idx := range indices {
		if idx == 0 {
			prevIdx = -1
			continue
		}
		if idx == prevIdx {
			continue
		}
		if idx < 0 || idx >= len(charset) {
			return Result{}, fmt.Errorf("%w: 输出下标 %d 超出字符集大小 %d", ocreval.ErrInference, idx, len(charset))
		}
		sb.WriteString(charset[idx])
		confs = append(confs, float64(probs[i]))
		prevIdx = idx
	}

	res := Result{Text: sb.String()}
	if len(confs) > 0 {
		res.Confidence = stat.Mean(confs, nil)
	}
	return res, nil
}

// JoinSegments 按顺序拼接各段文本, 置信度取各段平均 (空段计 0)
func JoinSegments(segments []Result) Result {
	if len(segments) == 0 {
		return Result{}
	}
	var sb strings.Builder
	confs := make([]float64, len(segments))
	for i, seg := range segments {
		sb.WriteString(seg.Text)
		confs[i] = seg.Confidence
	}
	return Result{Text: sb.String(), Confidence: stat.Mean(confs, nil)}
}

// checkShape 输出各维须为正, 第一维 (批大小) 可以为 0
func checkShape(output ocreval.Tensor) error {
	for i, d := range output.Shape {
		if d > 0 || (i == 0 && d == 0) {
			continue
		}
		return fmt.Errorf("%w: 无效的输出形状 %v", ocreval.ErrInference, output.Shape)
	}
	return nil
}

// argMax 返回最大值下标及最大值, 并列时取第一个
func argMax(slice []float32) (int, float32) {
	if len(slice) == 0 {
		return 0, 0
	}
	maxIdx := 0
	maxVal := slice[0]
	for i, v := range slice {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx, maxVal
}
