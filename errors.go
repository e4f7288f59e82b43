package ocreval

import "errors"

// 会话级错误: 出现即终止整个批次
var (
	ErrConfigParse = errors.New("配置解析失败")
	ErrModelLoad   = errors.New("模型加载失败")
)

// 单张图片级错误: 记录为失败结果, 批次继续
var (
	ErrImageDecode = errors.New("图像解码失败")
	ErrInference   = errors.New("推理失败")
)

// ErrAnswerLoad 标准答案加载失败, 只记录日志, 不影响识别
var ErrAnswerLoad = errors.New("答案加载失败")
