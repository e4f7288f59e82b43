package engine

import (
	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/modelcfg"
)

// Config 引擎配置信息
type Config struct {
	ModelPath          string
	ConfigPath         string // 为空时按模型路径自动查找
	DictPath           string // 文本识别字符集
	LabelPath          string // 分类标签, 为空时使用配置中的 label_map_file
	UseSpaceChar       bool
	OnnxRuntimeLibPath string
	IntraOpNumThreads  int
}

// Invoker 推理后端, 输入输出节点名由后端从模型中读取
type Invoker interface {
	InputNames() []string
	OutputNames() []string
	Run(inputs map[string]ocreval.Tensor) (map[string]ocreval.Tensor, error)
	Destroy()
}

// inputShaper 能报告输入形状的后端
type inputShaper interface {
	InputShape() []int64
}

// Engine 识别引擎, 创建后只读, 可在任意 goroutine 中顺序调用
type Engine struct {
	invoker    Invoker
	cfg        *modelcfg.ModelConfig
	kind       modelcfg.Kind
	outputName string
	// splitBatch 模型批大小固定为 1 时, 宽图各段逐段推理
	splitBatch bool
}
