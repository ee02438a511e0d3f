package debug

import (
	"image/color"
	"io"

	"nandsim/types"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// 曲线颜色，与交互网页保持一致
var (
	colorInput = color.RGBA{R: 0, G: 0, B: 0, A: 80}
	colorOut   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorLower = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorUpper = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// Format 图像格式
type Format string

// 支持的图像格式
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat 解析图像格式
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatSVG:
		return Format(s), nil
	}
	return "", errors.Errorf("unsupported image format %q (valid: png, svg)", s)
}

// Plot 静态曲线图
type Plot struct {
	Width  vg.Length // 图像宽度
	Height vg.Length // 图像高度
}

// NewPlot 以英寸为单位创建静态曲线图设置
func NewPlot(widthIn, heightIn float64) *Plot {
	return &Plot{Width: vg.Length(widthIn) * vg.Inch, Height: vg.Length(heightIn) * vg.Inch}
}

// xys 时间轴换算为纳秒的坐标点
func xys(time, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(time))
	for i := range time {
		pts[i].X = time[i] / types.NanoSecond
		pts[i].Y = values[i]
	}
	return pts
}

// addLine 添加一条曲线
func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color, width vg.Length, dashes ...vg.Length) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "line %s", name)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = width
	line.LineStyle.Dashes = dashes
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// newPlot 坐标轴、网格和图例
func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t, ns"
	p.Y.Label.Text = "U, V"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

// Build 构建单次仿真的曲线图：虚线为输入，粗线为输出，下节点实线，上节点点线
func (pl *Plot) Build(record *Record) (*plot.Plot, error) {
	p := newPlot("NAND charge redistribution (" + subtitle(record.Params) + ")")
	if err := addLine(p, "input", xys(record.Time, record.Input), colorInput, vg.Points(1.5), vg.Points(6), vg.Points(4)); err != nil {
		return nil, err
	}
	if err := addLine(p, "output U(Cn)", xys(record.Time, record.Output), colorOut, vg.Points(3)); err != nil {
		return nil, err
	}
	if err := addLine(p, "lower U(si1)", xys(record.Time, record.Lower), colorLower, vg.Points(2)); err != nil {
		return nil, err
	}
	if err := addLine(p, "upper U(si2)", xys(record.Time, record.Upper), colorUpper, vg.Points(2), vg.Points(2), vg.Points(3)); err != nil {
		return nil, err
	}
	return p, nil
}

// BuildOverlay 多次仿真输出电压的叠加图，用于参数扫描
func (pl *Plot) BuildOverlay(title string, names []string, list []*types.Series) (*plot.Plot, error) {
	if len(names) != len(list) {
		return nil, errors.Errorf("overlay: %d names for %d series", len(names), len(list))
	}
	p := newPlot(title)
	for i, s := range list {
		c := sweepColor(i, len(list))
		if err := addLine(p, names[i], xys(s.Time, s.Output), c, vg.Points(2)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// sweepColor 在红与蓝之间插值
func sweepColor(i, n int) color.Color {
	f := 0.0
	if n > 1 {
		f = float64(i) / float64(n-1)
	}
	return color.RGBA{
		R: uint8(214 - f*(214-31)),
		G: uint8(39 + f*(119-39)),
		B: uint8(40 + f*(180-40)),
		A: 255,
	}
}

// Write 以指定格式写出图像
func (pl *Plot) Write(p *plot.Plot, format Format, w io.Writer) error {
	wt, err := p.WriterTo(pl.Width, pl.Height, string(format))
	if err != nil {
		return errors.Wrapf(err, "plot writer %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrapf(err, "write %s", format)
	}
	return nil
}

// Render 构建并写出单次仿真的曲线图
func (pl *Plot) Render(record *Record, format Format, w io.Writer) error {
	p, err := pl.Build(record)
	if err != nil {
		return err
	}
	return pl.Write(p, format, w)
}
