package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/answer"
	"github.com/getcharzp/ocr-eval/engine"
)

// options 命令行参数
type options struct {
	LogLevel           string
	OnnxRuntimeLibPath string
	ModelPath          string
	ConfigPath         string
	DictPath           string
	LabelPath          string
	AnswerPath         string
	NoSpace            bool
	IntraOpNumThreads  int
}

func (o *options) engineConfig() engine.Config {
	return engine.Config{
		ModelPath:          o.ModelPath,
		ConfigPath:         o.ConfigPath,
		DictPath:           o.DictPath,
		LabelPath:          o.LabelPath,
		UseSpaceChar:       !o.NoSpace,
		OnnxRuntimeLibPath: o.OnnxRuntimeLibPath,
		IntraOpNumThreads:  o.IntraOpNumThreads,
	}
}

func (o *options) answers(logger zerolog.Logger) *answer.Matcher {
	if o.AnswerPath == "" {
		return nil
	}
	return answer.Load(o.AnswerPath, logger)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(lvl).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ocreval",
		Short:         "ONNX 文本识别 / 图像分类模型批量评测",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "info", "日志级别: debug|info|warn|error")
	pf.StringVar(&opts.OnnxRuntimeLibPath, "ort-lib", ocreval.DefaultLibraryPath(), "onnxruntime 动态库路径")
	pf.StringVarP(&opts.ModelPath, "model", "m", "", "ONNX 模型文件")
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "模型配置文件 (为空时自动查找)")
	pf.StringVarP(&opts.DictPath, "dict", "k", "", "文本识别字符集文件")
	pf.StringVarP(&opts.LabelPath, "labels", "l", "", "分类标签文件 (.txt 或 .json)")
	pf.StringVarP(&opts.AnswerPath, "answers", "a", "", "标准答案文件 (JSON)")
	pf.BoolVar(&opts.NoSpace, "no-space", false, "字符集不追加空格")
	pf.IntVar(&opts.IntraOpNumThreads, "threads", 0, "onnxruntime 线程数 (0 为默认)")
	_ = root.MarkPersistentFlagRequired("model")

	root.AddCommand(newRunCmd(opts), newServeCmd(opts))
	return root
}
