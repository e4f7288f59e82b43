package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/answer"
	"github.com/getcharzp/ocr-eval/postprocess"
)

type predictFunc func(img image.Image) (postprocess.Result, error)

func (f predictFunc) Predict(img image.Image) (postprocess.Result, error) { return f(img) }

func newTestServer(t *testing.T, p Predictor) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "plate.png", "label": "京A1234"}]`), 0o644))

	srv := httptest.NewServer(NewRouter(p, answer.Load(path, zerolog.Nop()), zerolog.Nop(), prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv
}

func upload(t *testing.T, url, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/predict/image", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestPredictImage(t *testing.T) {
	srv := newTestServer(t, predictFunc(func(img image.Image) (postprocess.Result, error) {
		if img.Bounds().Dx() != 8 {
			return postprocess.Result{}, fmt.Errorf("unexpected width %d", img.Bounds().Dx())
		}
		return postprocess.Result{Text: "京A1234", Confidence: 0.95}, nil
	}))

	resp := upload(t, srv.URL, "plate.png", pngBytes(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "京A1234", got.Text)
	require.Equal(t, 0.95, got.Confidence)
	require.NotNil(t, got.Answer)
	require.Equal(t, 100.0, *got.Accuracy)

	resp = upload(t, srv.URL, "other.png", pngBytes(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = PredictResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Nil(t, got.Answer)
	require.Nil(t, got.Accuracy)
}

func TestPredictImage_Errors(t *testing.T) {
	srv := newTestServer(t, predictFunc(func(image.Image) (postprocess.Result, error) {
		return postprocess.Result{}, fmt.Errorf("%w: %w", ocreval.ErrInference, errors.New("bad feed"))
	}))

	resp := upload(t, srv.URL, "x.png", []byte("not an image"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = upload(t, srv.URL, "x.png", pngBytes(t))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/predict/image", "text/plain", bytes.NewBufferString("x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `ocreval_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
