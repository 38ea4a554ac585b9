package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/John-Robertt/ImagingTriage/internal/classify"
	"github.com/John-Robertt/ImagingTriage/internal/infra/fsx"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultExtensions 是主文件扩展名的内置默认值（清洗后为空时回退到它）。
	DefaultExtensions = "arw,arq,axr,jpg,jpeg,tif,tiff,heif"
	// DefaultLanguage 是报告语言的内置默认值。
	DefaultLanguage = "zh"

	EnvPrefix = "TRIAGE"
	// FileName 是默认配置文件名（位于 UserConfigDir/triage/ 下）。
	FileName = "config.toml"
)

// 配置键（viper key / toml key / TRIAGE_* 环境变量后缀）。
const (
	KeyLanguage           = "language"
	KeyExtensions         = "extensions"
	KeyMode               = "mode"
	KeyInhibitMoveUnrated = "inhibit_move_unrated"
	KeyWriteReport        = "write_report"
)

// FileConfig 对应 config.toml 的结构。
type FileConfig struct {
	Language           string `mapstructure:"language" toml:"language"`
	Extensions         string `mapstructure:"extensions" toml:"extensions"`
	Mode               string `mapstructure:"mode" toml:"mode"`
	InhibitMoveUnrated bool   `mapstructure:"inhibit_move_unrated" toml:"inhibit_move_unrated"`
	WriteReport        bool   `mapstructure:"write_report" toml:"write_report"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Path 是待处理目录（clean + absolute）；只由 CLI 参数决定。
	Path   string
	DryRun bool

	Language           string
	Extensions         Extensions
	Mode               classify.Mode
	InhibitMoveUnrated bool
	WriteReport        bool

	// ConfigFile 是实际读取的配置文件；没有读取任何文件时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadOptions 描述一次加载的输入。
type LoadOptions struct {
	// File 是 --config 显式指定的文件；指定后必须存在。
	File string
	// Dir 是默认配置目录（File 为空时在其中查找 config.toml，可不存在）。
	Dir string
	// Flags 是命令行 flag 集合；只有显式设置过（Changed）的 flag 会覆盖配置。
	Flags *pflag.FlagSet
	// FlagKeys 把 flag 名映射到配置键，例如 "inhibit-unrated" -> inhibit_move_unrated。
	FlagKeys map[string]string
}

// Load 读取配置文件 / 环境变量 / flag 并合并为 FileConfig。
//
// 覆盖优先级（固定）：flag（显式设置） > TRIAGE_* 环境变量 > 配置文件 > 内置默认值。
func Load(opts LoadOptions) (FileConfig, string, error) {
	v := newViper()

	used := ""
	explicit := strings.TrimSpace(opts.File) != ""
	p := ""
	switch {
	case explicit:
		p = filepath.Clean(strings.TrimSpace(opts.File))
	case strings.TrimSpace(opts.Dir) != "":
		p = filepath.Join(opts.Dir, FileName)
	}

	if p != "" {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			v.SetConfigFile(p)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: p, Err: err}
			}
			used = p
		case os.IsNotExist(err):
			// 默认位置的配置文件可选；--config 指定的必须存在。
			if explicit {
				return FileConfig{}, "", &Error{Code: ErrCodeNotFound, Path: p, Err: os.ErrNotExist}
			}
		default:
			return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
	}

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: used, Err: err}
			}
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: used, Err: err}
	}
	return fc, used, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyExtensions, DefaultExtensions)
	v.SetDefault(KeyMode, string(classify.DefaultMode))
	v.SetDefault(KeyInhibitMoveUnrated, false)
	v.SetDefault(KeyWriteReport, true)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Resolve 把 FileConfig 与 CLI-only 的 path/dry-run 合并为 EffectiveConfig。
// path 为相对路径时以 cwd 为基准。
func Resolve(cwd, path string, dryRun bool, fc FileConfig, used string) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if strings.TrimSpace(path) == "" {
		path = "."
	}

	mode, err := classify.ParseMode(fc.Mode)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: used, Err: err}
	}

	return EffectiveConfig{
		Path:               absCleanFrom(cwdAbs, path),
		DryRun:             dryRun,
		Language:           normLanguage(fc.Language),
		Extensions:         ParseExtensions(fc.Extensions),
		Mode:               mode,
		InhibitMoveUnrated: fc.InhibitMoveUnrated,
		WriteReport:        fc.WriteReport,
		ConfigFile:         used,
	}, nil
}

// DefaultDir 返回默认配置目录 UserConfigDir/triage。
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "triage"), nil
}

// Save 清洗后把配置写入 path（原子替换）。
// extensions 清洗后为空时写入默认列表；mode 非法时报错且不落盘。
func Save(path string, fc FileConfig) (FileConfig, error) {
	mode, err := classify.ParseMode(fc.Mode)
	if err != nil {
		return FileConfig{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	fc.Mode = string(mode)
	fc.Extensions = SanitizeExtensions(fc.Extensions)
	fc.Language = normLanguage(fc.Language)

	b, err := toml.Marshal(fc)
	if err != nil {
		return FileConfig{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	p := filepath.Clean(path)
	if err := fsx.WriteFileAtomicReplace(filepath.Dir(p), filepath.Base(p), b); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

func normLanguage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLanguage
	}
	return s
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
