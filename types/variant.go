package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Variant 积分器变体类型
type Variant uint8

// 积分器变体常量定义
const (
	StepResponse Variant = iota // 阶跃响应：输入在切换时刻由 0 跳变到电源电压
	SteadyInput                 // 恒定输入：输入保持为给定电压
)

// VariantConfig 变体的固定配置
// 电容比例、时间网格与初始状态在同一变体内保持不变
type VariantConfig struct {
	Name       string  // 名称
	Horizon    float64 // 仿真总时长 (s)
	Samples    int     // 采样点数
	DrainRatio float64 // 漏极寄生电容 Csi = C * DrainRatio
	GateRatio  float64 // 栅极寄生电容 Czi = C * GateRatio
	LoadRatio  float64 // 负载电容 Cn = C * LoadRatio
	InitLower  float64 // 下节点初始电压
	InitUpper  float64 // 上节点初始电压
	LowBranch  bool    // 是否启用低输入分支
	Stabilize  bool    // 是否启用下节点稳定修正
}

// variantConfig 变体映射
var variantConfig = map[Variant]VariantConfig{
	StepResponse: {
		Name:       "step",
		Horizon:    80 * NanoSecond,
		Samples:    3000,
		DrainRatio: 1.0 / 5.0,
		GateRatio:  1.0 / 10.0,
		LoadRatio:  1,
		InitLower:  0,
		InitUpper:  SupplyVoltage,
		LowBranch:  true,
		Stabilize:  true,
	},
	SteadyInput: {
		Name:       "steady",
		Horizon:    100 * NanoSecond,
		Samples:    2000,
		DrainRatio: 1.0 / 10.0,
		GateRatio:  1.0 / 10.0,
		LoadRatio:  1,
		InitLower:  SupplyVoltage / 2,
		InitUpper:  SupplyVoltage / 2,
		LowBranch:  false,
		Stabilize:  false,
	},
}

var mapVariant = map[string]Variant{
	"step":          StepResponse,
	"step-response": StepResponse,
	"steady":        SteadyInput,
	"steady-input":  SteadyInput,
}

// Config 返回变体配置
func (v Variant) Config() (VariantConfig, bool) {
	c, ok := variantConfig[v]
	return c, ok
}

// String 返回变体的字符串表示
func (v Variant) String() string {
	if c, ok := variantConfig[v]; ok {
		return c.Name
	}
	return "unknown"
}

// ParseVariant 通过名称获取变体
func ParseVariant(name string) (Variant, error) {
	if v, ok := mapVariant[strings.ToLower(strings.TrimSpace(name))]; ok {
		return v, nil
	}
	return 0, errors.Wrapf(ErrUnknownVariant, "%q", name)
}

// MarshalText 实现 encoding.TextMarshaler
func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantConfig[v]; !ok {
		return nil, errors.Wrapf(ErrUnknownVariant, "%d", v)
	}
	return []byte(v.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (v *Variant) UnmarshalText(text []byte) error {
	p, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
