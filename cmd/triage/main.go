package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/config"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError 携带进程退出码：1=运行有错误/致命错误，2=用法错误。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func failed(err error) error { return &exitError{code: 1, err: err} }

// errSilentFailure 表示错误信息已经输出过，只需要设置退出码。
var errSilentFailure = &exitError{code: 1}

// cli 持有一次进程内的全部命令状态（便于测试时注入 stdout/stderr）。
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	lang       string
	verbose    bool

	guard *run.Guard
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, guard: &run.Guard{}}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, ee.err)
		}
		return ee.code
	}
	// cobra 的参数/flag 解析错误。
	fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
	fmt.Fprintln(stderr, root.UsageString())
	return 2
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "triage",
		Short: "按 XMP sidecar 的评级/颜色标签整理照片",
		Long: `triage 读取每个主文件同名 .xmp sidecar 中的 xmp:Rating / xmp:Label，
把主文件与 sidecar 一起移动到 RATING_x / LABEL_y / RATING_x-LABEL_y 子目录；
gather 把这些子目录中的文件移回原目录。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "配置文件（默认 $XDG_CONFIG_HOME/triage/config.toml）")
	root.PersistentFlags().StringVar(&c.lang, "lang", "", "报告语言："+fmt.Sprint(i18n.Available()))
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "在 stderr 输出逐条日志")

	root.AddCommand(
		c.sortCmd(),
		c.gatherCmd(),
		c.watchCmd(),
		c.reportCmd(),
		c.configCmd(),
	)
	return root
}

// flagKeys 把 flag 名映射到配置键；只有显式设置的 flag 才覆盖配置文件。
var flagKeys = map[string]string{
	"lang":            config.KeyLanguage,
	"language":        config.KeyLanguage,
	"extensions":      config.KeyExtensions,
	"mode":            config.KeyMode,
	"inhibit-unrated": config.KeyInhibitMoveUnrated,
}

// loadFile 合并配置文件、环境变量与 flag。allowMissing 时 --config 指向的文件可以不存在
// （config save 会创建它）。
func (c *cli) loadFile(cmd *cobra.Command, allowMissing bool) (config.FileConfig, string, error) {
	dir := ""
	if c.configFile == "" {
		if d, err := config.DefaultDir(); err == nil {
			dir = d
		}
	}
	opts := config.LoadOptions{
		File:     c.configFile,
		Dir:      dir,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	}
	fc, used, err := config.Load(opts)
	if err != nil && allowMissing && config.Code(err) == config.ErrCodeNotFound {
		opts.File = ""
		fc, used, err = config.Load(opts)
	}
	if err != nil {
		return config.FileConfig{}, "", err
	}
	if f := cmd.Flags().Lookup("no-report"); f != nil && f.Changed {
		fc.WriteReport = f.Value.String() != "true"
	}
	return fc, used, nil
}

func (c *cli) loadEffective(cmd *cobra.Command, path string, dryRun bool) (config.EffectiveConfig, error) {
	fc, used, err := c.loadFile(cmd, false)
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	return config.Resolve(cwd, path, dryRun, fc, used)
}

func (c *cli) bundle(lang string) *i18n.Bundle {
	b, err := i18n.Load(lang)
	if err != nil {
		// 内嵌语言文件损坏属于构建问题；退化为只输出 key。
		c.logger().Printf("加载语言文件失败：%v", err)
		return &i18n.Bundle{}
	}
	return b
}

func (c *cli) logger() *log.Logger {
	return log.New(c.stderr, "triage: ", log.Ltime)
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
