package modelcfg

import (
	"testing"

	"github.com/stretchr/testify/require"

	ocreval "github.com/getcharzp/ocr-eval"
)

func TestLoadCharacterSet(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "keys.txt", "a\nb\n\nc\n")

	withSpace, err := LoadCharacterSet(p, true)
	require.NoError(t, err)
	require.Len(t, withSpace, 4+2)
	require.Equal(t, Blank, withSpace[0])
	require.Equal(t, " ", withSpace[len(withSpace)-1])
	require.Equal(t, []string{"blank", "a", "b", "", "c", " "}, withSpace)

	noSpace, err := LoadCharacterSet(p, false)
	require.NoError(t, err)
	require.Equal(t, []string{"blank", "a", "b", "", "c"}, noSpace)

	_, err = LoadCharacterSet(dir+"/missing.txt", true)
	require.ErrorIs(t, err, ocreval.ErrConfigParse)
}

func TestLoadClassLabels(t *testing.T) {
	dir := t.TempDir()

	lines, err := LoadClassLabels(writeFile(t, dir, "labels.txt", "cat\ndog\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"cat", "dog"}, lines)

	mapped, err := LoadClassLabels(writeFile(t, dir, "w2i.json", `{"乙": 1, "甲": 0, "丁": 3}`))
	require.NoError(t, err)
	require.Equal(t, []string{"甲", "乙", "", "丁"}, mapped)

	_, err = LoadClassLabels(writeFile(t, dir, "bad.json", `[1,2]`))
	require.ErrorIs(t, err, ocreval.ErrConfigParse)
}
