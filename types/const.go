package types

// 电路物理常量定义
const (
	SupplyVoltage  = 5.0   // 电源电压 Up (V)
	LogicThreshold = 2.5   // 输入逻辑阈值 (V)
	PullUpResistor = 1e3   // 低输入时负载充电电阻 R (Ω)
	LowerDecay     = 0.95  // 低输入时下节点每步衰减系数
	QuiescentNode  = 0.01  // 节点静止判定阈值 (V)
	QuiescentOut   = 0.1   // 输出静止判定阈值 (V)
	StiffGain      = 1e8   // 下节点稳定修正增益 (1/s)
	StiffTrigger   = 0.1   // 下节点低于目标中点此比例时触发修正
	MidSplit       = 0.5   // 目标中点为输出电压的一半
	NanoSecond     = 1e-9  // 纳秒
	PicoFarad      = 1e-12 // 皮法
	MilliSiemens   = 1e-3  // 毫安/伏
)
