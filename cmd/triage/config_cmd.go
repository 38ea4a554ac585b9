package main

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/ImagingTriage/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或保存配置",
	}
	cmd.AddCommand(c.configShowCmd(), c.configSaveCmd())
	return cmd
}

func (c *cli) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "以 TOML 输出合并后的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, used, err := c.loadFile(cmd, false)
			if err != nil {
				return failed(err)
			}
			fc.Extensions = config.SanitizeExtensions(fc.Extensions)
			b, err := toml.Marshal(fc)
			if err != nil {
				return failed(err)
			}
			if used == "" {
				used = "（未读取配置文件，使用默认值）"
			}
			fmt.Fprintf(c.stdout, "# %s\n", used)
			_, _ = c.stdout.Write(b)
			return nil
		},
	}
}

func (c *cli) configSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "把当前配置（叠加本次 flag）写入配置文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, _, err := c.loadFile(cmd, true)
			if err != nil {
				return failed(err)
			}

			path := c.configFile
			if path == "" {
				dir, err := config.DefaultDir()
				if err != nil {
					return failed(fmt.Errorf("无法确定配置目录：%w", err))
				}
				path = filepath.Join(dir, config.FileName)
			}

			saved, err := config.Save(path, fc)
			if err != nil {
				return failed(err)
			}
			b := c.bundle(saved.Language)
			fmt.Fprintln(c.stderr, b.Get("config_saved", "path", path))
			return nil
		},
	}
	cmd.Flags().String("language", config.DefaultLanguage, "报告语言")
	addSortFlags(cmd)
	cmd.Flags().Bool("no-report", false, "默认不写入运行报告")
	return cmd
}
