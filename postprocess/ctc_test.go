package postprocess

import (
	"testing"

	"github.com/stretchr/testify/require"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/modelcfg"
)

var testCharset = []string{modelcfg.Blank, "1", "2", "a", "4", "b", " "}

// oneHot 构造 [N, T, C] 输出, 每个时间步在给定下标处取 prob
func oneHot(numClasses int, prob float32, segments ...[]int) ocreval.Tensor {
	seqLen := len(segments[0])
	data := make([]float32, len(segments)*seqLen*numClasses)
	for n, seg := range segments {
		for i, idx := range seg {
			base := (n*seqLen + i) * numClasses
			for c := 0; c < numClasses; c++ {
				data[base+c] = (1 - prob) / float32(numClasses-1)
			}
			data[base+idx] = prob
		}
	}
	return ocreval.Tensor{
		Shape: []int64{int64(len(segments)), int64(seqLen), int64(numClasses)},
		Data:  data,
	}
}

func TestDecodeSequence_BlankResetsDuplicates(t *testing.T) {
	indices := []int{0, 0, 3, 3, 0, 3, 5, 5, 0}
	probs := []float32{0.9, 0.9, 0.8, 0.7, 0.9, 0.6, 0.4, 0.3, 0.9}

	res, err := DecodeSequence(indices, probs, testCharset)
	require.NoError(t, err)
	require.Equal(t, "aab", res.Text)
	require.InDelta(t, (0.8+0.6+0.4)/3, res.Confidence, 1e-6)
}

func TestDecodeSequence_NoAdjacentDuplicates(t *testing.T) {
	indices := []int{1, 1, 1, 2, 2, 1, 0, 1, 1}
	probs := make([]float32, len(indices))

	res, err := DecodeSequence(indices, probs, testCharset)
	require.NoError(t, err)
	require.Equal(t, "1211", res.Text)
}

func TestDecodeSequence_Empty(t *testing.T) {
	res, err := DecodeSequence([]int{0, 0, 0}, []float32{1, 1, 1}, testCharset)
	require.NoError(t, err)
	require.Equal(t, "", res.Text)
	require.Equal(t, 0.0, res.Confidence)
}

func TestDecodeSequence_OutOfRange(t *testing.T) {
	_, err := DecodeSequence([]int{9}, []float32{1}, testCharset)
	require.ErrorIs(t, err, ocreval.ErrInference)
}

func TestCTCDecode_Segments(t *testing.T) {
	out := oneHot(len(testCharset), 0.8,
		[]int{3, 3, 0, 5},
		[]int{0, 0, 0, 0},
		[]int{6, 1, 1, 2},
	)

	res, err := CTCDecode(out, testCharset)
	require.NoError(t, err)
	require.Equal(t, "ab 12", res.Text)
	// 空段置信度 0 也计入平均
	require.InDelta(t, (0.8+0+0.8)/3, res.Confidence, 1e-6)
}

func TestCTCDecode_TwoDimensional(t *testing.T) {
	out := oneHot(len(testCharset), 0.5, []int{1, 0, 1})
	out.Shape = out.Shape[1:]

	res, err := CTCDecode(out, testCharset)
	require.NoError(t, err)
	require.Equal(t, "11", res.Text)
	require.InDelta(t, 0.5, res.Confidence, 1e-6)
}

func TestCTCDecode_BadInput(t *testing.T) {
	_, err := CTCDecode(ocreval.Tensor{Shape: []int64{7}, Data: make([]float32, 7)}, testCharset)
	require.ErrorIs(t, err, ocreval.ErrInference)

	_, err = CTCDecode(ocreval.Tensor{Shape: []int64{1, 4, 7}, Data: make([]float32, 7)}, testCharset)
	require.ErrorIs(t, err, ocreval.ErrInference)

	_, err = CTCDecode(oneHot(3, 0.9, []int{1}), nil)
	require.ErrorIs(t, err, ocreval.ErrInference)
}

func TestCTCDecode_NonPositiveDims(t *testing.T) {
	for _, shape := range [][]int64{{-1, -1, 7}, {1, -4, 7}, {1, 4, 0}, {-2, 7}} {
		_, err := CTCDecode(ocreval.Tensor{Shape: shape, Data: make([]float32, 28)}, testCharset)
		require.ErrorIs(t, err, ocreval.ErrInference, "shape %v", shape)
	}

	res, err := CTCDecode(ocreval.Tensor{Shape: []int64{0, 4, 7}}, testCharset)
	require.NoError(t, err)
	require.Equal(t, Result{}, res)
}

func TestJoinSegments(t *testing.T) {
	require.Equal(t, Result{}, JoinSegments(nil))

	res := JoinSegments([]Result{{Text: "ab", Confidence: 0.9}, {Text: "c", Confidence: 0.5}})
	require.Equal(t, "abc", res.Text)
	require.InDelta(t, 0.7, res.Confidence, 1e-9)
}

func TestArgMax(t *testing.T) {
	idx, val := argMax([]float32{0.1, 0.7, 0.7, 0.2})
	require.Equal(t, 1, idx)
	require.Equal(t, float32(0.7), val)

	idx, _ = argMax(nil)
	require.Equal(t, 0, idx)
}
