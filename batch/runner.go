package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/answer"
)

// Runner 顺序批量识别. 单张图片失败只记录在结果中, 不影响后续图片.
type Runner struct {
	Engine  Predictor
	Answers *answer.Matcher // 可为空
	Logger  zerolog.Logger
	Metrics *Metrics // 可为空
}

// Run 依次识别 paths 中的图片. ctx 取消后不再开始新的图片.
func (r *Runner) Run(ctx context.Context, paths []string, progress ProgressFunc) Report {
	start := time.Now()
	report := Report{
		RunID:   uuid.NewString(),
		Total:   len(paths),
		Results: make([]ImageResult, 0, len(paths)),
	}
	logger := r.Logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("images", len(paths)).Msg("开始批量识别")

	var accuracies []float64
	for i, path := range paths {
		if ctx.Err() != nil {
			report.Canceled = true
			logger.Warn().Int("done", i).Msg("批量识别已取消")
			break
		}

		res := r.processOne(path)
		r.Metrics.observe(res)
		report.Results = append(report.Results, res)

		if res.OK() {
			report.Succeeded++
			logger.Debug().Str("image", path).Str("text", res.Prediction).
				Float64("confidence", res.Confidence).Dur("took", res.Duration).Msg("识别成功")
		} else {
			report.Failed++
			logger.Warn().Err(res.Err).Str("image", path).Msg("识别失败")
		}
		if res.Accuracy != nil {
			accuracies = append(accuracies, *res.Accuracy)
		}

		if progress != nil {
			progress(i+1, len(paths))
		}
	}

	report.Scored = len(accuracies)
	if len(accuracies) > 0 {
		report.MeanAccuracy = stat.Mean(accuracies, nil)
	}
	report.Elapsed = time.Since(start)

	logger.Info().Int("succeeded", report.Succeeded).Int("failed", report.Failed).
		Int("scored", report.Scored).Float64("mean_accuracy", report.MeanAccuracy).
		Dur("elapsed", report.Elapsed).Msg("批量识别完成")
	return report
}

func (r *Runner) processOne(path string) (res ImageResult) {
	start := time.Now()
	res = ImageResult{ImagePath: path}
	defer func() {
		if p := recover(); p != nil {
			res.Duration = time.Since(start)
			res.Err = fmt.Errorf("%w: %v", ocreval.ErrInference, p)
		}
	}()

	pred, err := r.Engine.PredictFile(path)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.Prediction = pred.Text
	res.Confidence = pred.Confidence

	if label, ok := r.Answers.Get(filepath.Base(path)); ok {
		res.Answer = &label
		if acc, ok := answer.Accuracy(pred.Text, label); ok {
			res.Accuracy = &acc
		}
	}
	return res
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// IsImage 按扩展名判断是否为支持的图片
func IsImage(path string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(path)))
}

// CollectImages 展开参数列表: 目录取其中的图片 (按文件名排序), 其余路径原样保留,
// 无法读取的文件留给识别阶段记录为失败
func CollectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImage(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}
