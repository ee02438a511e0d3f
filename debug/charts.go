package debug

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"nandsim/types"
	"nandsim/utils"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	echarts "github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

// NewCharts 由记录创建曲线页面
func NewCharts(record *Record) *Charts { return &Charts{Record: *record} }

// lineOpts 电压曲线和激励曲线共用的全局设置
func lineOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  echarts.ThemeWesteros,
			Width:  "1000px",
			Height: "560px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "t, ns",
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "U, V",
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	}
}

// lineData 转换为曲线数据
func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i].Value = v
	}
	return items
}

// axisNS 时间轴（纳秒）
func axisNS(time []float64) []string {
	axis := make([]string, len(time))
	for i, t := range time {
		axis[i] = strconv.FormatFloat(t/types.NanoSecond, 'f', 2, 64)
	}
	return axis
}

// subtitle 参数说明
func subtitle(p types.Parameters) string {
	stim := utils.FormatValue(p.Stimulus, "s")
	if p.Variant == types.SteadyInput {
		stim = utils.FormatValue(p.Stimulus, "V")
	}
	return fmt.Sprintf("%s: S=%s C=%s stimulus=%s", p.Variant,
		utils.FormatValue(p.S, "A/V"), utils.FormatValue(p.C, "F"), stim)
}

// Render 输出交互网页
func (c *Charts) Render(w io.Writer) error {
	axis := axisNS(c.Time)

	lineV := charts.NewLine()
	lineV.SetGlobalOptions(lineOpts("NAND charge redistribution", subtitle(c.Params))...)
	lineV.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{"#d62728", "#2ca02c", "#1f77b4"}))
	lineV.SetXAxis(axis).
		AddSeries("output U(Cn)", lineData(c.Output)).
		AddSeries("lower U(si1)", lineData(c.Lower)).
		AddSeries("upper U(si2)", lineData(c.Upper))

	lineI := charts.NewLine()
	lineI.SetGlobalOptions(lineOpts("Input stimulus", c.ID)...)
	lineI.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{"#555555"}))
	lineI.SetXAxis(axis).AddSeries("input", lineData(c.Input))

	page := components.NewPage()
	page.AddCharts(lineV, lineI)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		c.Error(err)
	}
}

func (c *Charts) Error(err error) { slog.Error("render charts", "id", c.ID, "err", err) }
