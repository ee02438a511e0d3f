// Package transient 对 NAND 门下拉串联结构的电荷再分配进行定步长显式欧拉积分
package transient

import (
	"nandsim/types"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Simulate 执行一次瞬态积分
// 每次调用都从头计算并返回新分配的序列，调用之间不保留任何状态
// 参数：
//
//	params: 变体、跨导 S、参考电容 C、激励参数
//
// 返回的所有序列长度为变体采样点数 N，积分恰好推进 N-1 步
func Simulate(params types.Parameters) (*types.Series, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "simulate")
	}
	cfg, _ := params.Variant.Config()
	n := cfg.Samples
	h := cfg.Horizon / float64(n)
	k := NewCoefficients(params)

	series := types.NewSeries(params, n)
	floats.Span(series.Time, 0, cfg.Horizon)
	for i, t := range series.Time {
		series.Input[i] = inputAt(params, t)
	}

	s := initialState(cfg)
	record(series, 0, s)
	for i := 0; i < n-1; i++ {
		in := series.Input[i]
		if cfg.LowBranch && in < types.LogicThreshold {
			s = stepLow(k, h, s)
		} else {
			s = stepHigh(k, h, in, s, cfg.Stabilize)
		}
		record(series, i+1, s)
	}
	return series, nil
}

// inputAt 给定时刻的输入电平
func inputAt(p types.Parameters, t float64) float64 {
	switch p.Variant {
	case types.StepResponse:
		if t < p.Stimulus {
			return 0
		}
		return types.SupplyVoltage
	default:
		return p.Stimulus
	}
}

func record(series *types.Series, i int, s State) {
	series.Lower[i] = s.Lower
	series.Upper[i] = s.Upper
	series.Output[i] = s.Output
}
