package modelcfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ocreval "github.com/getcharzp/ocr-eval"
	"github.com/getcharzp/ocr-eval/internal/util"
)

// LoadCharacterSet 加载 CTC 字符集.
// 每行一个字符, 保留顺序与空行; useSpace 时追加空格; 下标 0 固定为 blank.
func LoadCharacterSet(path string, useSpace bool) ([]string, error) {
	lines, err := util.LoadLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 字符集: %w", ocreval.ErrConfigParse, err)
	}

	charset := make([]string, 0, len(lines)+2)
	charset = append(charset, Blank)
	charset = append(charset, lines...)
	if useSpace {
		charset = append(charset, " ")
	}
	return charset, nil
}

// LoadClassLabels 加载分类标签, 下标即类别 id.
// .json 文件按 {标签: id} 映射读取, 其余按每行一个标签读取.
func LoadClassLabels(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadLabelMap(path)
	}
	labels, err := util.LoadLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 标签文件: %w", ocreval.ErrConfigParse, err)
	}
	return labels, nil
}

func loadLabelMap(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 标签映射: %w", ocreval.ErrConfigParse, err)
	}

	var w2i map[string]int
	if err := json.Unmarshal(b, &w2i); err != nil {
		return nil, fmt.Errorf("%w: 标签映射 %s: %w", ocreval.ErrConfigParse, path, err)
	}

	size := 0
	for _, id := range w2i {
		if id < 0 {
			return nil, fmt.Errorf("%w: 标签映射 %s: 负数 id %d", ocreval.ErrConfigParse, path, id)
		}
		size = max(size, id+1)
	}
	labels := make([]string, size)
	for label, id := range w2i {
		labels[id] = label
	}
	return labels, nil
}
