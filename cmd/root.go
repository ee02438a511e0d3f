package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"nandsim/config"
	"nandsim/debug"
	"nandsim/logging"
	"nandsim/types"
	"nandsim/utils"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app 命令共享状态
type app struct {
	configPath string
	envFile    string
	logLevel   string
	variant    string
	s          string
	c          string
	stimulus   string

	cfg    *config.Config
	params types.Parameters
	log    *slog.Logger
}

// newRootCmd 构建命令树
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "nandsim",
		Short: "Charge redistribution transient of a CMOS NAND pull-down stack",
		Long: `nandsim integrates the lumped charge-transfer model of a NAND gate ` +
			`(two internal node capacitances and a load) with a fixed-step explicit ` +
			`Euler scheme and renders the voltage trajectories.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with NANDSIM_* overrides")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: info, debug, trace, warn, error")
	flags.StringVarP(&a.variant, "variant", "v", "", "integrator variant: step or steady")
	flags.StringVarP(&a.s, "transconductance", "S", "", "transconductance S in A/V, e.g. 1.5m")
	flags.StringVarP(&a.c, "capacitance", "C", "", "reference capacitance C in F, e.g. 50p")
	flags.StringVarP(&a.stimulus, "stimulus", "t", "", "switch time in s (step) or input voltage in V (steady)")

	root.AddCommand(
		a.newRunCmd(),
		a.newPlotCmd(),
		a.newChartCmd(),
		a.newSweepCmd(),
		a.newServeCmd(),
	)
	return root
}

// setup 加载配置，命令行参数覆盖配置文件
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Simulation.Variant = a.variant
		// 切换变体时未显式给出的数值回到该变体的初始值
		cfg.Simulation.S, cfg.Simulation.C, cfg.Simulation.Stimulus = "", "", ""
	}
	if flags.Changed("transconductance") {
		cfg.Simulation.S = a.s
	}
	if flags.Changed("capacitance") {
		cfg.Simulation.C = a.c
	}
	if flags.Changed("stimulus") {
		cfg.Simulation.Stimulus = a.stimulus
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.params, err = cfg.Parameters(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	a.log.Log(cmd.Context(), logging.LevelTrace, "parameters",
		"variant", a.params.Variant, "s", a.params.S, "c", a.params.C, "stimulus", a.params.Stimulus)
	return nil
}

// plot 按配置创建静态曲线图设置
func (a *app) plot() *debug.Plot {
	return debug.NewPlot(a.cfg.Output.Width, a.cfg.Output.Height)
}

// output 打开输出目标，"-" 表示标准输出，相对路径位于输出目录下
func (a *app) output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.Output.Dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	a.log.Info("writing", "path", path)
	return f, f.Close, nil
}

// writeTo 打开输出目标并写出
func (a *app) writeTo(cmd *cobra.Command, path string, render func(io.Writer) error) error {
	w, closeFn, err := a.output(cmd, path)
	if err != nil {
		return err
	}
	if err := render(w); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

// describe 参数的可读描述
func describe(p types.Parameters) string {
	stim := utils.FormatValue(p.Stimulus, "s")
	if p.Variant == types.SteadyInput {
		stim = utils.FormatValue(p.Stimulus, "V")
	}
	return p.Variant.String() + " S=" + utils.FormatValue(p.S, "A/V") +
		" C=" + utils.FormatValue(p.C, "F") + " stimulus=" + stim
}
