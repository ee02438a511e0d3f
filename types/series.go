package types

// Series 一次仿真的全部采样序列
// 所有序列长度相同并共享同一时间轴
type Series struct {
	Params Parameters `json:"params"`
	Time   []float64  `json:"time"`   // 时间 (s)
	Input  []float64  `json:"input"`  // 输入激励 (V)
	Output []float64  `json:"output"` // 负载电容电压 (V)
	Lower  []float64  `json:"lower"`  // 下节点电压 (V)
	Upper  []float64  `json:"upper"`  // 上节点电压 (V)
}

// NewSeries 分配长度为 n 的序列
func NewSeries(params Parameters, n int) *Series {
	return &Series{
		Params: params,
		Time:   make([]float64, n),
		Input:  make([]float64, n),
		Output: make([]float64, n),
		Lower:  make([]float64, n),
		Upper:  make([]float64, n),
	}
}

// Len 采样点数
func (s *Series) Len() int { return len(s.Time) }

// Step 时间轴间隔
func (s *Series) Step() float64 {
	if len(s.Time) < 2 {
		return 0
	}
	return s.Time[1] - s.Time[0]
}
