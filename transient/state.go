package transient

import (
	"math"

	"nandsim/types"
)

// State 某一采样点的积分状态
// Output 始终等于 Lower+Upper
type State struct {
	Lower  float64
	Upper  float64
	Output float64
}

// initialState 变体初始状态
func initialState(c types.VariantConfig) State {
	s := State{Lower: c.InitLower, Upper: c.InitUpper}
	s.Output = math.Min(s.Lower+s.Upper, types.SupplyVoltage)
	return s
}

// quiescent 判断是否已到达静止状态
func (s State) quiescent() bool {
	return s.Lower <= types.QuiescentNode && s.Upper <= types.QuiescentNode && s.Output < types.QuiescentOut
}

// stepLow 低输入分支：负载经 R 充向电源，下节点几何衰减，上节点补足输出
func stepLow(k Coefficients, h float64, s State) State {
	out := s.Output + h*k.ChargeRate(s.Output)
	lower := s.Lower * types.LowerDecay
	return State{Lower: lower, Upper: out - lower, Output: out}
}

// stepHigh 高输入分支的显式欧拉步
func stepHigh(k Coefficients, h, in float64, s State, stabilize bool) State {
	if s.quiescent() {
		return State{}
	}
	dLower, dUpper := k.NodeRate(in, s)
	if stabilize {
		dLower += stiffCorrection(s)
	}
	lower := math.Max(0, s.Lower+h*dLower)
	upper := math.Max(0, s.Upper+h*dUpper)
	return State{Lower: lower, Upper: upper, Output: lower + upper}
}

// stiffCorrection 显式欧拉的数值稳定修正项，不是电路物理项
// 下节点远低于输出一半时，以大增益把它拉回 50/50 分压目标
func stiffCorrection(s State) float64 {
	mid := s.Output * types.MidSplit
	if s.Lower < mid*types.StiffTrigger {
		return (mid - s.Lower) * types.StiffGain
	}
	return 0
}
