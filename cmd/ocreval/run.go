package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/getcharzp/ocr-eval/batch"
	"github.com/getcharzp/ocr-eval/engine"
)

func newRunCmd(opts *options) *cobra.Command {
	var metricsOut string

	cmd := &cobra.Command{
		Use:     "run [图片或目录...]",
		Short:   "批量识别图片并输出结果表",
		Example: "  ocreval run -m rec.onnx -k ppocr_keys_v1.txt -a data.json ./images",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(opts.LogLevel)

			paths, err := batch.CollectImages(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("没有找到图片")
			}

			eng, err := engine.NewEngine(opts.engineConfig())
			if err != nil {
				return err
			}
			defer eng.Destroy()
			logger.Info().Str("model", opts.ModelPath).Stringer("kind", eng.Kind()).
				Str("config", eng.ModelConfig().Source).Msg("模型已加载")

			reg := prometheus.NewRegistry()
			runner := &batch.Runner{
				Engine:  eng,
				Answers: opts.answers(logger),
				Logger:  logger,
				Metrics: batch.NewMetrics(reg),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report := runner.Run(ctx, paths, func(done, total int) {
				logger.Debug().Msgf("进度 %d/%d (%.0f%%)", done, total, 100*float64(done)/float64(total))
			})
			printReport(cmd.OutOrStdout(), report)

			if metricsOut != "" {
				if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
					logger.Error().Err(err).Str("path", metricsOut).Msg("写入指标失败")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "将指标写入 Prometheus textfile")
	return cmd
}

func printReport(w io.Writer, report batch.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "图片\t识别结果\t置信度\t标准答案\t正确率\t状态")
	for _, r := range report.Results {
		ans, acc := "-", "-"
		if r.Answer != nil {
			ans = *r.Answer
		}
		if r.Accuracy != nil {
			acc = fmt.Sprintf("%.1f%%", *r.Accuracy)
		}
		pred := r.Prediction
		if !r.OK() {
			pred = "错误"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%s\t%s\t%s\n",
			filepath.Base(r.ImagePath), pred, r.Confidence, ans, acc, r.Status())
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n共 %d 张, 成功 %d, 失败 %d", report.Total, report.Succeeded, report.Failed)
	if report.Scored > 0 {
		fmt.Fprintf(w, ", 平均正确率 %.2f%% (%d 张有标准答案)", report.MeanAccuracy, report.Scored)
	}
	if report.Canceled {
		fmt.Fprint(w, ", 已取消")
	}
	fmt.Fprintf(w, ", 耗时 %s\n", report.Elapsed.Round(time.Millisecond))
}
