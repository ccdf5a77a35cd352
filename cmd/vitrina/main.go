package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/vitrina/internal/config"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError 让子命令指定退出码，同时不让 cobra 再打印一遍错误。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	fmt.Fprintf(stderr, "错误：%v\n", err)
	return 2
}

// cli 持有全局 flag 与按需构造的 logger。不使用包级变量，便于测试并行构造多个根命令。
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "vitrina",
		Short: "多语言工业产品展示站点",
		Long: `vitrina 是四个工业事业部的双语（es/en）展示站点。

图片按约定的候选路径逐个探测，全部失败时显示占位面板。
audit 子命令抓取运行中的站点，核对每个图片槽位是否真的能加载。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "配置文件路径（默认读取当前目录下的 "+config.FileName+"，不存在则用内置默认）")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "输出 debug 日志；--verbose=false 可覆盖配置中的 debug")

	root.AddCommand(
		c.newServeCmd(),
		c.newAuditCmd(),
		c.newResolveCmd(),
	)
	return root
}

// load 合并 CLI 与配置文件，并据此构造 logger。
func (c *cli) load(cmd *cobra.Command, args config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	args.ConfigPath = c.configPath
	args.Verbose = c.verbose
	args.VerboseSet = cmd.Flags().Changed("verbose")

	eff, err := config.LoadEffective(cwd, args)
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	logger, err := newLogger(eff, c.stderr)
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("初始化日志失败：%w", err)
	}
	c.logger = logger
	return eff, nil
}

// newLogger 按配置构造 zap logger。日志只写 stderr，stdout 留给 JSON 报告。
func newLogger(eff config.EffectiveConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(eff.LogLevel)
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if eff.LogDevelopment {
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if eff.LogDevelopment {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
