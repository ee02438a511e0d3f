// Package nandsim 模拟 CMOS 与非门下拉串联结构中的电荷再分配过程
package nandsim

import (
	"context"
	"runtime"
	"strings"

	"nandsim/transient"
	"nandsim/types"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Field 扫描参数
type Field string

// 可扫描的参数
const (
	FieldS        Field = "s"
	FieldC        Field = "c"
	FieldStimulus Field = "stimulus"
)

// ParseField 解析扫描参数名称
func ParseField(name string) (Field, error) {
	switch f := Field(strings.ToLower(name)); f {
	case FieldS, FieldC, FieldStimulus:
		return f, nil
	}
	return "", errors.Errorf("unknown sweep field %q (valid: s, c, stimulus)", name)
}

// Set 返回替换该参数后的副本
func (f Field) Set(p types.Parameters, v float64) types.Parameters {
	switch f {
	case FieldS:
		p.S = v
	case FieldC:
		p.C = v
	case FieldStimulus:
		p.Stimulus = v
	}
	return p
}

// Simulate 执行一次瞬态积分
func Simulate(params types.Parameters) (*types.Series, error) {
	return transient.Simulate(params)
}

// Sweep 对一个参数的多个取值分别仿真，结果与 values 顺序一致
// 每次仿真仍是独立的同步计算，任一参数非法时整个扫描失败
func Sweep(ctx context.Context, base types.Parameters, field Field, values []float64) ([]*types.Series, error) {
	if _, err := ParseField(string(field)); err != nil {
		return nil, err
	}
	out := make([]*types.Series, len(values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, v := range values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series, err := transient.Simulate(field.Set(base, v))
			if err != nil {
				return errors.Wrapf(err, "sweep %s=%g", field, v)
			}
			out[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
