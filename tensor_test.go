package ocreval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTensor(t *testing.T) {
	tensor, err := NewTensor([]int64{2, 3}, make([]float32, 6))
	require.NoError(t, err)
	require.Equal(t, 6, tensor.Size())
	require.Equal(t, 3, tensor.Dim(-1))
	require.Equal(t, 2, tensor.Dim(0))
	require.Equal(t, 0, tensor.Dim(5))

	_, err = NewTensor([]int64{2, 3}, make([]float32, 5))
	require.Error(t, err)

	require.Equal(t, 0, Tensor{}.Size())
}

func TestDefaultLibraryPath(t *testing.T) {
	t.Setenv(LibraryPathEnv, "")
	require.True(t, strings.HasPrefix(DefaultLibraryPath(), "./lib/onnxruntime"))

	t.Setenv(LibraryPathEnv, "/opt/ort/libonnxruntime.so")
	require.Equal(t, "/opt/ort/libonnxruntime.so", DefaultLibraryPath())
}
