package engine

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/up-zero/gotool/convertutil"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/internal/onnx"
	"github.com/getcharzp/ocr-eval/modelcfg"
	"github.com/getcharzp/ocr-eval/postprocess"
	"github.com/getcharzp/ocr-eval/preprocess"
)

// NewEngine 加载配置与模型, 初始化引擎
func NewEngine(cfg Config) (*Engine, error) {
	modelCfg, err := LoadModelConfig(cfg)
	if err != nil {
		return nil, err
	}

	oc := new(onnx.Config)
	_ = convertutil.CopyProperties(cfg, oc)

	if err := oc.New(); err != nil {
		return nil, err
	}
	defer oc.Destroy()

	session, err := oc.NewSession(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	engine, err := NewEngineWithInvoker(session, modelCfg)
	if err != nil {
		session.Destroy()
		return nil, err
	}
	return engine, nil
}

// LoadModelConfig 读取模型配置, 字符集与分类标签
func LoadModelConfig(cfg Config) (*modelcfg.ModelConfig, error) {
	path := cfg.ConfigPath
	if path == "" {
		path = modelcfg.FindConfigFile(cfg.ModelPath)
	}

	modelCfg, err := modelcfg.Load(path)
	if err != nil {
		return nil, err
	}

	if cfg.DictPath != "" {
		modelCfg.CharacterSet, err = modelcfg.LoadCharacterSet(cfg.DictPath, cfg.UseSpaceChar)
		if err != nil {
			return nil, err
		}
	}

	labelPath := cfg.LabelPath
	if labelPath == "" {
		labelPath = modelCfg.LabelMapFile
	}
	if labelPath != "" {
		modelCfg.ClassLabels, err = modelcfg.LoadClassLabels(labelPath)
		if err != nil {
			return nil, err
		}
	}
	return modelCfg, nil
}

// NewEngineWithInvoker 使用已打开的推理后端创建引擎, 模型类别在此确定
func NewEngineWithInvoker(invoker Invoker, modelCfg *modelcfg.ModelConfig) (*Engine, error) {
	inputs, outputs := invoker.InputNames(), invoker.OutputNames()
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: 模型没有输入或输出节点", ocreval.ErrModelLoad)
	}

	e := &Engine{
		invoker:    invoker,
		cfg:        modelCfg,
		kind:       modelcfg.ResolveKind(inputs[0], modelCfg),
		outputName: outputs[0],
	}
	if slices.Contains(outputs, modelCfg.OutputName) {
		e.outputName = modelCfg.OutputName
	}

	switch e.kind {
	case modelcfg.KindSequence:
		if len(modelCfg.CharacterSet) == 0 {
			return nil, fmt.Errorf("%w: 文本识别模型需要字符集", ocreval.ErrConfigParse)
		}
		e.splitBatch = fixedBatch(invoker, modelCfg)
	case modelcfg.KindClassification, modelcfg.KindLegacy:
		if len(modelCfg.ClassLabels) == 0 {
			return nil, fmt.Errorf("%w: %v 模型需要分类标签", ocreval.ErrConfigParse, e.kind)
		}
	}
	return e, nil
}

// fixedBatch 判断模型批大小是否固定为 1. 后端能报告输入形状时以其为准,
// 否则使用配置文件中声明的 input.shape
func fixedBatch(invoker Invoker, modelCfg *modelcfg.ModelConfig) bool {
	shape := modelCfg.InputShape
	if s, ok := invoker.(inputShaper); ok {
		shape = s.InputShape()
	} else if modelCfg.Source == "" {
		return false
	}
	return len(shape) > 0 && shape[0] == 1
}

// Kind 模型类别
func (e *Engine) Kind() modelcfg.Kind { return e.kind }

// ModelConfig 模型配置 (只读)
func (e *Engine) ModelConfig() *modelcfg.ModelConfig { return e.cfg }

// PredictFile 读取图像文件并识别
func (e *Engine) PredictFile(path string) (postprocess.Result, error) {
	img, err := preprocess.Open(path)
	if err != nil {
		return postprocess.Result{}, err
	}
	return e.Predict(img)
}

// Predict 识别单张图像
func (e *Engine) Predict(img image.Image) (postprocess.Result, error) {
	input, err := preprocess.Preprocess(img, e.kind, e.cfg)
	if err != nil {
		return postprocess.Result{}, err
	}

	if e.splitBatch && input.Dim(0) > 1 {
		parts := preprocess.Split(input)
		segments := make([]postprocess.Result, 0, len(parts))
		for _, part := range parts {
			seg, err := e.runAndDecode(part)
			if err != nil {
				return postprocess.Result{}, err
			}
			segments = append(segments, seg)
		}
		return postprocess.JoinSegments(segments), nil
	}

	return e.runAndDecode(input)
}

func (e *Engine) runAndDecode(input ocreval.Tensor) (postprocess.Result, error) {
	feed := make(map[string]ocreval.Tensor, len(e.invoker.InputNames()))
	for _, name := range e.invoker.InputNames() {
		feed[name] = input
	}

	outputs, err := e.invoker.Run(feed)
	if err != nil {
		if !errors.Is(err, ocreval.ErrInference) {
			err = fmt.Errorf("%w: %w", ocreval.ErrInference, err)
		}
		return postprocess.Result{}, err
	}

	output, ok := outputs[e.outputName]
	if !ok {
		return postprocess.Result{}, fmt.Errorf("%w: 输出节点 %s 缺失或类型不支持", ocreval.ErrInference, e.outputName)
	}
	return postprocess.Decode(output, e.kind, e.cfg)
}

// Destroy 释放推理后端
func (e *Engine) Destroy() {
	if e.invoker != nil {
		e.invoker.Destroy()
	}
}
