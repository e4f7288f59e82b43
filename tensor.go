package ocreval

import "fmt"

// Tensor 行优先存储的 float32 张量
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor 创建张量并校验数据长度与形状一致
func NewTensor(shape []int64, data []float32) (Tensor, error) {
	t := Tensor{Shape: shape, Data: data}
	if t.Size() != len(data) {
		return Tensor{}, fmt.Errorf("张量形状 %v 需要 %d 个元素, 实际 %d", shape, t.Size(), len(data))
	}
	return t, nil
}

// Size 元素个数
func (t Tensor) Size() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// Dim 返回第 i 维大小, 支持负索引
func (t Tensor) Dim(i int) int {
	if i < 0 {
		i += len(t.Shape)
	}
	if i < 0 || i >= len(t.Shape) {
		return 0
	}
	return int(t.Shape[i])
}
