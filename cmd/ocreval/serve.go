package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/getcharzp/ocr-eval/engine"
	"github.com/getcharzp/ocr-eval/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	addr := ":8080"
	if v := os.Getenv("OCREVAL_ADDR"); v != "" {
		addr = v
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "以 HTTP 服务方式提供识别接口",
		Example: "  ocreval serve -m rec.onnx -k ppocr_keys_v1.txt --addr :8080\n" +
			"  curl -F image=@test.png http://localhost:8080/predict/image",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(opts.LogLevel)

			eng, err := engine.NewEngine(opts.engineConfig())
			if err != nil {
				return err
			}
			defer eng.Destroy()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewRouter(eng, opts.answers(logger), logger, reg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Stringer("kind", eng.Kind()).Msg("服务已启动")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("服务关闭异常")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "HTTP 监听地址")
	return cmd
}
