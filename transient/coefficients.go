package transient

import "nandsim/types"

// Coefficients 集总电荷转移方程的代数系数
// 每次仿真调用按当前 S、C 重新计算，不跨参数集缓存
type Coefficients struct {
	D      float64 // 3*Csi + 2*Czi + 2*Cn
	K1     float64 // S*(Czi+Csi+Cn) / (Csi*D)
	K2     float64 // S*(Czi+2*Csi+Cn) / (Csi*D)
	K3     float64 // S / D
	KCross float64 // S / Csi
	Cn     float64 // 负载电容
	Csi    float64 // 漏极寄生电容
	Czi    float64 // 栅极寄生电容
}

// NewCoefficients 计算系数
func NewCoefficients(p types.Parameters) Coefficients {
	cn, csi, czi := p.Capacitances()
	d := 3*csi + 2*czi + 2*cn
	return Coefficients{
		D:      d,
		K1:     p.S * (czi + csi + cn) / (csi * d),
		K2:     p.S * (czi + 2*csi + cn) / (csi * d),
		K3:     p.S / d,
		KCross: p.S / csi,
		Cn:     cn,
		Csi:    csi,
		Czi:    czi,
	}
}

// NodeRate 高输入分支下两个节点电压的导数
// 交叉项 Kcross*in 在下节点方程中正负抵消，两个导数恒等
func (k Coefficients) NodeRate(in float64, s State) (dLower, dUpper float64) {
	dUpper = k.K1*in - k.K2*in - k.K3*(types.SupplyVoltage+s.Lower+s.Upper)
	dLower = dUpper - k.KCross*in + k.KCross*in
	return dLower, dUpper
}

// ChargeRate 低输入分支下负载电容经上拉电阻充电的速率
func (k Coefficients) ChargeRate(output float64) float64 {
	return (types.SupplyVoltage - output) / (types.PullUpResistor * k.Cn)
}
