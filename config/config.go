// Package config 统一加载 nandsim 配置
// 加载顺序：默认值 -> YAML 文件 -> .env 文件 -> 环境变量
package config

import (
	"os"
	"strings"

	"nandsim/types"
	"nandsim/utils"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "NANDSIM_"

// Config nandsim 全部配置
type Config struct {
	// Simulation 仿真参数，数值支持工程单位后缀
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Output 文件输出设置
	Output OutputConfig `json:"output" yaml:"output"`

	// Server 交互界面服务设置
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging 日志设置
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig 仿真参数
type SimulationConfig struct {
	Variant  string `json:"variant" yaml:"variant"`   // "step" 或 "steady"
	S        string `json:"s" yaml:"s"`               // 跨导，如 "1.5m"
	C        string `json:"c" yaml:"c"`               // 参考电容，如 "50p"
	Stimulus string `json:"stimulus" yaml:"stimulus"` // 切换时刻 "15n" 或输入电压 "5"
}

// OutputConfig 文件输出设置
type OutputConfig struct {
	Dir    string  `json:"dir" yaml:"dir"`
	Width  float64 `json:"width" yaml:"width"`   // 图像宽度 (inch)
	Height float64 `json:"height" yaml:"height"` // 图像高度 (inch)
}

// ServerConfig 交互界面服务设置
type ServerConfig struct {
	Listen string `json:"listen" yaml:"listen"`
	Open   bool   `json:"open" yaml:"open"` // 启动后打开浏览器
}

// LoggingConfig 日志设置
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // "info"、"debug"、"trace"
}

// Default 默认配置
// 仿真数值留空，解析时取所选变体的初始参数
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Variant: types.StepResponse.String(),
		},
		Output: OutputConfig{
			Dir:    ".",
			Width:  10,
			Height: 7,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load 加载配置
// path 为空时跳过 YAML 文件，envFile 为空或不存在时跳过 .env 文件。
// 不做校验，调用方应用完命令行覆盖后再调用 Validate
func Load(path, envFile string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}
	dotenv := map[string]string{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if dotenv, err = godotenv.Read(envFile); err != nil {
				return nil, errors.Wrapf(err, "reading env file %s", envFile)
			}
		}
	}
	applyEnvOverrides(config, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})
	return config, nil
}

// LoadFromFile 从 YAML 文件加载配置，未设置的字段保留默认值
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return config, nil
}

// Parameters 将仿真配置解析为仿真参数
func (c *Config) Parameters() (types.Parameters, error) {
	variant, err := types.ParseVariant(c.Simulation.Variant)
	if err != nil {
		return types.Parameters{}, err
	}
	def := types.DefaultParameters(variant)
	list := utils.ParamList{c.Simulation.S, c.Simulation.C, c.Simulation.Stimulus}
	p := types.Parameters{Variant: variant}
	if p.S, err = list.Float64(0, def.S); err != nil {
		return p, errors.Wrap(err, "simulation.s")
	}
	if p.C, err = list.Float64(1, def.C); err != nil {
		return p, errors.Wrap(err, "simulation.c")
	}
	if p.Stimulus, err = list.Float64(2, def.Stimulus); err != nil {
		return p, errors.Wrap(err, "simulation.stimulus")
	}
	return p, nil
}

// Validate 检查配置
func (c *Config) Validate() error {
	p, err := c.Parameters()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return errors.Errorf("output size must be positive, got %gx%g", c.Output.Width, c.Output.Height)
	}
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return errors.Errorf("invalid log level: %s (valid: info, debug, trace, warn, error)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖
func applyEnvOverrides(config *Config, getenv func(string) string) {
	if v := getenv(EnvPrefix + "VARIANT"); v != "" {
		config.Simulation.Variant = v
	}
	if v := getenv(EnvPrefix + "S"); v != "" {
		config.Simulation.S = v
	}
	if v := getenv(EnvPrefix + "C"); v != "" {
		config.Simulation.C = v
	}
	if v := getenv(EnvPrefix + "STIMULUS"); v != "" {
		config.Simulation.Stimulus = v
	}
	if v := getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := getenv(EnvPrefix + "LISTEN"); v != "" {
		config.Server.Listen = v
	}
	if v := getenv(EnvPrefix + "OPEN"); v != "" {
		config.Server.Open = v == "true" || v == "1"
	}
	if v := getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
