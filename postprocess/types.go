package postprocess

// Result 识别结果
type Result struct {
	Text string
	// Confidence 置信度 [0, 1], 分类模型固定为 0
	Confidence float64
}
