package types

// DefaultParameters 各变体的初始参数，取原交互工具的初始滑块值
func DefaultParameters(v Variant) Parameters {
	switch v {
	case SteadyInput:
		return Parameters{Variant: SteadyInput, S: 0.3 * MilliSiemens, C: 50 * PicoFarad, Stimulus: SupplyVoltage}
	default:
		return Parameters{Variant: StepResponse, S: 1.5 * MilliSiemens, C: 50 * PicoFarad, Stimulus: 15 * NanoSecond}
	}
}

// Slider 交互滑块的取值范围，显示单位下的数值
type Slider struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Unit   string  `json:"unit"`
	Scale  float64 `json:"scale"`  // 显示值乘以 Scale 得到 SI 值
	Suffix string  `json:"suffix"` // 与 Scale 对应的工程单位后缀
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Step   float64 `json:"step"`
}

// Sliders 变体对应的三个参数滑块：S、C、激励
func Sliders(v Variant) []Slider {
	sliders := []Slider{
		{Name: "s", Label: "Transconductance S", Unit: "mA/V", Scale: MilliSiemens, Suffix: "m", Min: 0.1, Max: 2.0, Step: 0.01},
		{Name: "c", Label: "Capacitance C", Unit: "pF", Scale: PicoFarad, Suffix: "p", Min: 10, Max: 200, Step: 1},
	}
	if v == SteadyInput {
		return append(sliders, Slider{Name: "stimulus", Label: "Input voltage", Unit: "V", Scale: 1, Min: 0, Max: SupplyVoltage, Step: 0.05})
	}
	return append(sliders, Slider{Name: "stimulus", Label: "Switch time", Unit: "ns", Scale: NanoSecond, Suffix: "n", Min: 5, Max: 60, Step: 0.1})
}
