package modelcfg

import "fmt"

// Kind 模型类别, 决定预处理与解码方式
type Kind int

const (
	KindSequence       Kind = iota + 1 // 文本识别 (CTC)
	KindClassification                 // 单标签图像分类
	KindLegacy                         // 单通道字符分类
)

// 模型输入节点名, 由模型本身声明
const (
	TextRecognizerInput      = "TextRecognizerInput"
	ImageClassificationInput = "ImageClassificationInput"
)

// Blank CTC 空白符, 固定占用字符集下标 0
const Blank = "blank"

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindClassification:
		return "classification"
	case KindLegacy:
		return "legacy"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind 解析配置文件中的 model_kind 字段
func ParseKind(s string) (Kind, error) {
	switch s {
	case "sequence", "ctc", "rec":
		return KindSequence, nil
	case "classification", "cls":
		return KindClassification, nil
	case "legacy", "char":
		return KindLegacy, nil
	}
	return 0, fmt.Errorf("未知的模型类别: %q", s)
}

// ModelConfig 模型配置, 加载后只读
type ModelConfig struct {
	InputName      string
	OutputName     string
	InputShape     []int64
	ResizeHeight   int // 0 表示使用各模型类别的默认值
	ResizeWidth    int
	ContrastFactor float32
	ChannelOrder   string // bgr | rgb, 仅文本识别使用
	Kind           Kind   // 0 表示按输入节点名推断
	LabelMapFile   string

	CharacterSet []string
	ClassLabels  []string

	// Source 配置来源文件, 使用内置默认值时为空
	Source string
}

// descriptor 配置文件结构
type descriptor struct {
	Input        ioDescriptor         `json:"input" yaml:"input" toml:"input"`
	Output       ioDescriptor         `json:"output" yaml:"output" toml:"output"`
	Preprocess   preprocessDescriptor `json:"preprocess" yaml:"preprocess" toml:"preprocess"`
	LabelMapFile string               `json:"label_map_file" yaml:"label_map_file" toml:"label_map_file"`
	ModelKind    string               `json:"model_kind" yaml:"model_kind" toml:"model_kind"`
}

type ioDescriptor struct {
	Name  string  `json:"name" yaml:"name" toml:"name"`
	Shape []int64 `json:"shape" yaml:"shape" toml:"shape"`
}

type preprocessDescriptor struct {
	Resize         []int    `json:"resize" yaml:"resize" toml:"resize"` // [h, w]
	AdjustContrast *float32 `json:"adjust_contrast" yaml:"adjust_contrast" toml:"adjust_contrast"`
	ChannelOrder   string   `json:"channel_order" yaml:"channel_order" toml:"channel_order"`
}
