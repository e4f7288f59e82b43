package batch

import (
	"time"

	"github.com/getcharzp/ocr-eval/postprocess"
)

// Predictor 单张图片识别
type Predictor interface {
	PredictFile(path string) (postprocess.Result, error)
}

// ProgressFunc 每处理完一张图片回调一次
type ProgressFunc func(done, total int)

// ImageResult 单张图片的结果, Err 非空表示失败
type ImageResult struct {
	ImagePath  string
	Prediction string
	Confidence float64
	Answer     *string  // 无标准答案时为 nil
	Accuracy   *float64 // 无标准答案时为 nil
	Duration   time.Duration
	Err        error
}

// OK 是否识别成功
func (r ImageResult) OK() bool { return r.Err == nil }

// Status 状态描述
func (r ImageResult) Status() string {
	if r.Err != nil {
		return "失败: " + r.Err.Error()
	}
	return "成功"
}

// Report 一次批量识别的汇总
type Report struct {
	RunID        string
	Results      []ImageResult
	Total        int
	Succeeded    int
	Failed       int
	Scored       int
	MeanAccuracy float64 // 仅统计有标准答案的图片
	Canceled     bool
	Elapsed      time.Duration
}
