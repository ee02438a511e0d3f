// Package debug 记录仿真结果并输出为 JSON、CSV、图像和交互网页
package debug

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"nandsim/transient"
	"nandsim/types"

	"github.com/pkg/errors"
	"github.com/rs/xid"
)

// Record 一次仿真的历史状态
type Record struct {
	ID      string            `json:"id"`      // 运行编号
	Params  types.Parameters  `json:"params"`  // 仿真参数
	Summary transient.Summary `json:"summary"` // 特征量
	Time    []float64         `json:"time"`    // 时间列
	Input   []float64         `json:"input"`   // 激励列
	Output  []float64         `json:"output"`  // 输出电压列
	Lower   []float64         `json:"lower"`   // 下节点电压列
	Upper   []float64         `json:"upper"`   // 上节点电压列
}

// NewRecord 由仿真序列创建记录，序列数据直接引用不复制
func NewRecord(series *types.Series) *Record {
	return &Record{
		ID:      xid.New().String(),
		Params:  series.Params,
		Summary: transient.Summarize(series),
		Time:    series.Time,
		Input:   series.Input,
		Output:  series.Output,
		Lower:   series.Lower,
		Upper:   series.Upper,
	}
}

// Series 还原仿真序列
func (list *Record) Series() *types.Series {
	return &types.Series{
		Params: list.Params,
		Time:   list.Time,
		Input:  list.Input,
		Output: list.Output,
		Lower:  list.Lower,
		Upper:  list.Upper,
	}
}

// Render 以 JSON 格式输出
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

// csvHeader CSV 列名
var csvHeader = []string{"time", "input", "output", "lower", "upper"}

// RenderCSV 以 CSV 格式输出，每个采样点一行
func (list *Record) RenderCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	row := make([]string, len(csvHeader))
	for i := range list.Time {
		for j, col := range [][]float64{list.Time, list.Input, list.Output, list.Lower, list.Upper} {
			row[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}
