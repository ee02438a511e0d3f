package types

import (
	"math"

	"github.com/pkg/errors"
)

// Parameters 仿真参数
// Stimulus 在阶跃响应变体中为切换时刻 (s)，在恒定输入变体中为输入电压 (V)
type Parameters struct {
	Variant  Variant `json:"variant" yaml:"variant"`
	S        float64 `json:"s" yaml:"s"`               // 跨导 (A/V)
	C        float64 `json:"c" yaml:"c"`               // 参考电容 (F)
	Stimulus float64 `json:"stimulus" yaml:"stimulus"` // 切换时刻或输入电压
}

// Validate 检查参数
// 只拒绝会导致除零的 S、C，超出范围的激励参数照常接受
func (p Parameters) Validate() error {
	if _, ok := p.Variant.Config(); !ok {
		return errors.Wrapf(ErrUnknownVariant, "%d", p.Variant)
	}
	if !positive(p.S) {
		return errors.Wrapf(ErrInvalidParameter, "S=%g must be > 0", p.S)
	}
	if !positive(p.C) {
		return errors.Wrapf(ErrInvalidParameter, "C=%g must be > 0", p.C)
	}
	return nil
}

// Capacitances 由参考电容得到负载、漏极寄生、栅极寄生电容
func (p Parameters) Capacitances() (cn, csi, czi float64) {
	c, _ := p.Variant.Config()
	return p.C * c.LoadRatio, p.C * c.DrainRatio, p.C * c.GateRatio
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
