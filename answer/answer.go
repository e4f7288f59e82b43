package answer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	ocreval "github.com/getcharzp/ocr-eval"
)

// Matcher 标准答案匹配器, 以文件名为键, 加载后只读
type Matcher struct {
	path    string
	answers map[string]string
}

type record struct {
	Name  *string `json:"name"`
	Label any     `json:"label"`
}

// Load 加载标准答案文件 ([{"name": ..., "label": ...}]).
// 文件不存在或解析失败时只记录日志并返回空匹配器.
// 同名条目以后出现的为准.
func Load(path string, logger zerolog.Logger) *Matcher {
	m := &Matcher{path: path, answers: make(map[string]string)}
	if err := m.load(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("标准答案不可用")
		return m
	}
	logger.Debug().Str("path", path).Int("count", len(m.answers)).Msg("标准答案已加载")
	return m
}

func (m *Matcher) load() error {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ocreval.ErrAnswerLoad, err)
	}

	var records []record
	if err := json.Unmarshal(b, &records); err != nil {
		return fmt.Errorf("%w: %s: %w", ocreval.ErrAnswerLoad, m.path, err)
	}

	for _, r := range records {
		if r.Name == nil || r.Label == nil {
			continue
		}
		if label, ok := r.Label.(string); ok {
			m.answers[*r.Name] = label
		} else {
			m.answers[*r.Name] = fmt.Sprint(r.Label)
		}
	}
	return nil
}

// Path 答案文件路径
func (m *Matcher) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

// Len 答案条数
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.answers)
}

// Get 获取指定文件名的标准答案
func (m *Matcher) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	label, ok := m.answers[name]
	return label, ok
}

// Has 判断文件是否属于标准数据集
func (m *Matcher) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Accuracy 基于编辑距离的正确率 (百分比).
// 标准答案为空时返回 false.
func Accuracy(prediction, truth string) (float64, bool) {
	prediction = strings.TrimSpace(prediction)
	truth = strings.TrimSpace(truth)
	if truth == "" {
		return 0, false
	}

	dist := Distance(prediction, truth)
	acc := 1.0 - float64(dist)/float64(max(1, utf8.RuneCountInString(truth)))
	return max(0, acc) * 100, true
}

// Distance Levenshtein 编辑距离, 按字符 (rune) 计算
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
