package utils

import (
	"regexp"
	"strconv"
	"strings"

	"nandsim/types"

	"github.com/pkg/errors"
)

// ParamList 参数值列表，元素为带工程单位后缀的数值字符串（如 "50p"、"1.5m"）
type ParamList []string

// unitMap 工程单位后缀倍率
var unitMap = map[string]float64{
	"t":   1e12,  // 太
	"g":   1e9,   // 吉
	"meg": 1e6,   // 兆
	"k":   1e3,   // 千
	"m":   1e-3,  // 毫
	"u":   1e-6,  // 微
	"µ":   1e-6,  // 微
	"n":   1e-9,  // 纳
	"p":   1e-12, // 皮
	"f":   1e-15, // 飞
}

// valueRegexp 数值 + 可选倍率后缀 + 可选单位名 (F/s/V/A/A/V/ohm)
// 倍率后缀优先匹配，单独的 f 总是飞 (1e-15)
var valueRegexp = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)(meg|[tgkmunpfµ])?(?:f|s|v|a|a/v|ohm)?$`)

// ParseValue 解析带工程单位后缀的数值，1.5m -> 0.0015
// 与 SPICE 约定一致：后缀不区分大小写，m 为毫，meg 为兆，
// 紧跟数值的 F 按飞解析（5F -> 5e-15），法拉需写倍率，如 50pF、1uF
func ParseValue(val string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(val))
	matches := valueRegexp.FindStringSubmatch(s)
	if matches == nil {
		return 0, errors.Wrapf(types.ErrInvalidValue, "%q", val)
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, errors.Wrapf(types.ErrInvalidValue, "%q: %v", val, err)
	}
	if multiplier, ok := unitMap[matches[2]]; ok {
		num *= multiplier
	}
	return num, nil
}

// FormatValue 以工程单位后缀格式化数值
func FormatValue(v float64, unit string) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	for _, p := range []struct {
		suffix string
		scale  float64
	}{
		{"T", 1e12}, {"G", 1e9}, {"Meg", 1e6}, {"k", 1e3}, {"", 1},
		{"m", 1e-3}, {"u", 1e-6}, {"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15},
	} {
		if abs >= p.scale {
			return strconv.FormatFloat(v/p.scale, 'g', 4, 64) + p.suffix + unit
		}
	}
	return strconv.FormatFloat(v, 'g', 4, 64) + unit
}

// Float64 解析浮点数，越界返回默认值，格式错误返回错误
func (value ParamList) Float64(i int, defaultValue float64) (float64, error) {
	if i >= len(value) || strings.TrimSpace(value[i]) == "" {
		return defaultValue, nil
	}
	return ParseValue(value[i])
}
