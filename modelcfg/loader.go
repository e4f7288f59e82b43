package modelcfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/internal/util"
)

// Default 内置默认配置
func Default() *ModelConfig {
	return &ModelConfig{
		InputName:      "input",
		OutputName:     "output",
		InputShape:     []int64{1, 224, 224, 3},
		ContrastFactor: 1.0,
		ChannelOrder:   "bgr",
	}
}

// Load 加载模型配置, 路径为空或文件不存在时返回默认配置.
// 支持 .json / .yaml / .yml / .toml, 其余扩展名按 json 解析.
func Load(path string) (*ModelConfig, error) {
	if path == "" || !util.PathExists(path) {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取 %s: %w", ocreval.ErrConfigParse, path, err)
	}

	var d descriptor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &d)
	case ".toml":
		err = toml.Unmarshal(b, &d)
	default:
		err = json.Unmarshal(b, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ocreval.ErrConfigParse, path, err)
	}

	cfg, err := d.toConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ocreval.ErrConfigParse, path, err)
	}
	cfg.Source = path
	if cfg.LabelMapFile != "" {
		cfg.LabelMapFile = resolveRelative(cfg.LabelMapFile, filepath.Dir(path))
	}
	return cfg, nil
}

func (d descriptor) toConfig() (*ModelConfig, error) {
	cfg := Default()
	if d.Input.Name != "" {
		cfg.InputName = d.Input.Name
	}
	if len(d.Input.Shape) > 0 {
		cfg.InputShape = d.Input.Shape
	}
	if d.Output.Name != "" {
		cfg.OutputName = d.Output.Name
	}

	switch len(d.Preprocess.Resize) {
	case 0:
	case 2:
		cfg.ResizeHeight, cfg.ResizeWidth = d.Preprocess.Resize[0], d.Preprocess.Resize[1]
		if cfg.ResizeHeight <= 0 || cfg.ResizeWidth <= 0 {
			return nil, fmt.Errorf("resize 必须为正数: %v", d.Preprocess.Resize)
		}
	default:
		return nil, fmt.Errorf("resize 需要 [高, 宽] 两个值, 实际 %v", d.Preprocess.Resize)
	}

	if d.Preprocess.AdjustContrast != nil {
		cfg.ContrastFactor = *d.Preprocess.AdjustContrast
	}

	switch order := strings.ToLower(d.Preprocess.ChannelOrder); order {
	case "":
	case "bgr", "rgb":
		cfg.ChannelOrder = order
	default:
		return nil, fmt.Errorf("未知的通道顺序: %q", d.Preprocess.ChannelOrder)
	}

	if d.ModelKind != "" {
		k, err := ParseKind(strings.ToLower(d.ModelKind))
		if err != nil {
			return nil, err
		}
		cfg.Kind = k
	}

	cfg.LabelMapFile = d.LabelMapFile
	return cfg, nil
}

// FindConfigFile 查找模型配置文件, 依次尝试
// <模型目录>/config.json, <模型目录>/<模型名>_config.json, ./config.json
func FindConfigFile(modelPath string) string {
	modelDir := filepath.Dir(modelPath)
	modelName := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))

	candidates := []string{
		filepath.Join(modelDir, "config.json"),
		filepath.Join(modelDir, modelName+"_config.json"),
		"config.json",
	}
	for _, p := range candidates {
		if util.PathExists(p) {
			return p
		}
	}
	return ""
}

// ResolveKind 确定模型类别: 配置显式指定优先, 其次按模型声明的输入节点名,
// 其余情况下单通道 NHWC 输入视为字符分类, 否则按文本识别处理
func ResolveKind(inputName string, cfg *ModelConfig) Kind {
	if cfg != nil && cfg.Kind != 0 {
		return cfg.Kind
	}
	switch inputName {
	case TextRecognizerInput:
		return KindSequence
	case ImageClassificationInput:
		return KindClassification
	}
	if cfg != nil && len(cfg.InputShape) == 4 && cfg.InputShape[3] == 1 {
		return KindLegacy
	}
	return KindSequence
}

func resolveRelative(p, baseDir string) string {
	if filepath.IsAbs(p) || util.PathExists(p) {
		return p
	}
	if alt := filepath.Join(baseDir, p); util.PathExists(alt) {
		return alt
	}
	return p
}
