package transient

import (
	"nandsim/types"

	"gonum.org/v1/gonum/floats"
)

// Summary 一次仿真的特征量
type Summary struct {
	PeakOutput     float64 `json:"peak_output"`     // 输出最大值 (V)
	PeakTime       float64 `json:"peak_time"`       // 输出最大值时刻 (s)
	MinOutput      float64 `json:"min_output"`      // 输出最小值 (V)
	Bump           float64 `json:"bump"`            // 输出超过电源电压的高度 (V)，无超出时为 0
	FinalLower     float64 `json:"final_lower"`     // 末点下节点电压
	FinalUpper     float64 `json:"final_upper"`     // 末点上节点电压
	FinalOutput    float64 `json:"final_output"`    // 末点输出电压
	QuiescentIndex int     `json:"quiescent_index"` // 首次到达 (0,0,0) 的采样点，-1 表示未到达
}

// Summarize 计算序列特征量
func Summarize(s *types.Series) Summary {
	n := s.Len()
	if n == 0 {
		return Summary{QuiescentIndex: -1}
	}
	peak := floats.MaxIdx(s.Output)
	sum := Summary{
		PeakOutput:     s.Output[peak],
		PeakTime:       s.Time[peak],
		MinOutput:      floats.Min(s.Output),
		FinalLower:     s.Lower[n-1],
		FinalUpper:     s.Upper[n-1],
		FinalOutput:    s.Output[n-1],
		QuiescentIndex: -1,
	}
	if sum.PeakOutput > types.SupplyVoltage {
		sum.Bump = sum.PeakOutput - types.SupplyVoltage
	}
	for i := range n {
		if s.Lower[i] == 0 && s.Upper[i] == 0 && s.Output[i] == 0 {
			sum.QuiescentIndex = i
			break
		}
	}
	return sum
}
