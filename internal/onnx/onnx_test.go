package onnx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/internal/util"
)

func TestNewSession_MissingModel(t *testing.T) {
	lib := ocreval.DefaultLibraryPath()
	if !util.PathExists(lib) {
		t.Skipf("onnxruntime 动态库不存在: %s", lib)
	}

	oc := &Config{OnnxRuntimeLibPath: lib}
	require.NoError(t, oc.New())
	defer oc.Destroy()

	_, err := oc.NewSession(filepath.Join(t.TempDir(), "missing.onnx"))
	require.ErrorIs(t, err, ocreval.ErrModelLoad)
}
