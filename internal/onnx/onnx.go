package onnx

import (
	"fmt"
	"sync"

	ort "github.com/getcharzp/onnxruntime_purego"

	ocreval "github.com/getcharzp/ocr-eval"
)

// Config onnxruntime 配置
type Config struct {
	OnnxRuntimeLibPath string
	IntraOpNumThreads  int

	OnnxEngine     *ort.Engine
	SessionOptions *ort.SessionOptions
}

// 动态库与运行环境是进程级的, 只加载一次
var (
	engineOnce   sync.Once
	sharedEngine *ort.Engine
	engineErr    error
)

// New 加载 onnxruntime 并创建会话选项
func (c *Config) New() error {
	engineOnce.Do(func() {
		lib := c.OnnxRuntimeLibPath
		if lib == "" {
			lib = ocreval.DefaultLibraryPath()
		}
		sharedEngine, engineErr = ort.NewEngine(lib)
	})
	if engineErr != nil {
		return fmt.Errorf("%w: 初始化 onnxruntime 失败: %w", ocreval.ErrModelLoad, engineErr)
	}
	c.OnnxEngine = sharedEngine

	options, err := c.OnnxEngine.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("%w: 创建会话选项: %w", ocreval.ErrModelLoad, err)
	}
	if c.IntraOpNumThreads > 0 {
		if err := options.SetIntraOpNumThreads(int32(c.IntraOpNumThreads)); err != nil {
			options.Destroy()
			return fmt.Errorf("%w: 设置线程数: %w", ocreval.ErrModelLoad, err)
		}
	}
	c.SessionOptions = options
	return nil
}

// Destroy 释放会话选项, 已创建的会话不受影响
func (c *Config) Destroy() {
	if c.SessionOptions != nil {
		c.SessionOptions.Destroy()
		c.SessionOptions = nil
	}
}

// Session 推理会话, 输入输出节点名从模型中读取
type Session struct {
	session *ort.Session
}

// NewSession 打开模型并创建会话
func (c *Config) NewSession(modelPath string) (*Session, error) {
	if c.OnnxEngine == nil {
		return nil, fmt.Errorf("%w: onnxruntime 未初始化", ocreval.ErrModelLoad)
	}
	session, err := c.OnnxEngine.NewSession(modelPath, c.SessionOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建会话 %s: %w", ocreval.ErrModelLoad, modelPath, err)
	}
	if len(session.InputNames) == 0 || len(session.OutputNames) == 0 {
		session.Destroy()
		return nil, fmt.Errorf("%w: 模型 %s 没有输入或输出节点", ocreval.ErrModelLoad, modelPath)
	}
	return &Session{session: session}, nil
}

// InputNames 模型声明的输入节点
func (s *Session) InputNames() []string { return s.session.InputNames }

// OutputNames 模型声明的输出节点
func (s *Session) OutputNames() []string { return s.session.OutputNames }

// Run 执行一次推理, inputs 需包含全部输入节点.
// float32 输出原样返回, int64 输出转为 float32, 其余类型的输出不返回.
func (s *Session) Run(inputs map[string]ocreval.Tensor) (map[string]ocreval.Tensor, error) {
	in := make(map[string]*ort.Value, len(s.session.InputNames))
	defer func() {
		for _, v := range in {
			v.Destroy()
		}
	}()

	for _, name := range s.session.InputNames {
		t, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("%w: 缺少输入节点 %s", ocreval.ErrInference, name)
		}
		if len(t.Data) == 0 {
			return nil, fmt.Errorf("%w: 输入节点 %s 数据为空", ocreval.ErrInference, name)
		}
		v, err := ort.NewTensor(t.Shape, t.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: 创建输入张量 %s: %w", ocreval.ErrInference, name, err)
		}
		in[name] = v
	}

	out, err := s.session.Run(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ocreval.ErrInference, err)
	}
	defer func() {
		for _, v := range out {
			v.Destroy()
		}
	}()

	results := make(map[string]ocreval.Tensor, len(out))
	for name, v := range out {
		t, ok, err := toTensor(v)
		if err != nil {
			return nil, fmt.Errorf("%w: 读取输出节点 %s: %w", ocreval.ErrInference, name, err)
		}
		if ok {
			results[name] = t
		}
	}
	return results, nil
}

// toTensor 拷贝输出数据, 数据随 Value 一起释放
func toTensor(v *ort.Value) (ocreval.Tensor, bool, error) {
	shape, err := v.GetShape()
	if err != nil {
		return ocreval.Tensor{}, false, err
	}
	t := ocreval.Tensor{Shape: append([]int64(nil), shape...)}

	if data, err := ort.GetTensorData[float32](v); err == nil {
		t.Data = append([]float32(nil), data...)
		return t, true, nil
	}
	if data, err := ort.GetTensorData[int64](v); err == nil {
		t.Data = make([]float32, len(data))
		for i, d := range data {
			t.Data[i] = float32(d)
		}
		return t, true, nil
	}
	return ocreval.Tensor{}, false, nil
}

// Destroy 释放会话
func (s *Session) Destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
}
