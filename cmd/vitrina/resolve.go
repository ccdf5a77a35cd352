package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vitrina/internal/assets"
	"github.com/John-Robertt/vitrina/internal/config"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/infra/httpx"
	"github.com/John-Robertt/vitrina/internal/probe"
	"github.com/John-Robertt/vitrina/internal/resolve"
)

func (c *cli) newResolveCmd() *cobra.Command {
	var (
		index   int
		count   int
		hero    bool
		probeAt string
	)
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "打印某个图片位置展开后的候选列表",
		Long: `不带参数时 path 视为具名资源（例如 /img/home/hero）；
--index 展开目录下的某个编号，--count 展开整个图库（--hero 前置 hero）。

--probe 指定资源根目录或 http(s) 基地址时，会按顺序实际探测并打印结果。`,
		Example: `  vitrina resolve /img/aquaculture --index 3
  vitrina resolve /img/about --count 8 --hero
  vitrina resolve /img/home/hero --probe ./static`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hero && !cmd.Flags().Changed("count") {
				return fmt.Errorf("--hero 只能与 --count 一起使用")
			}
			eff, err := c.load(cmd, config.CLIArgs{})
			if err != nil {
				return err
			}

			loc := domain.Named(args[0])
			switch {
			case cmd.Flags().Changed("index"):
				loc = domain.Indexed(args[0], index)
			case cmd.Flags().Changed("count"):
				loc = domain.Gallery(args[0], count, hero)
			}
			list := resolve.Resolver{Extensions: eff.ProbeExtensions}.Resolve(loc)
			printCandidates(c.stdout, list)

			if probeAt == "" {
				return nil
			}
			checker, err := newChecker(probeAt, eff)
			if err != nil {
				return err
			}
			p := probe.Prober{
				Checker: checker,
				Timeout: eff.ProbeTimeout,
				Logger:  c.logger.Named("probe"),
			}
			snap := p.Run(cmd.Context(), probe.New(list))
			printOutcome(c.stdout, snap)
			if snap.State != probe.StateDisplayed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "编号（1 起）")
	cmd.Flags().IntVar(&count, "count", 0, "图库图片数量")
	cmd.Flags().BoolVar(&hero, "hero", false, "图库前置 hero 候选")
	cmd.Flags().StringVar(&probeAt, "probe", "", "资源根目录或 http(s) 基地址；指定后实际探测")
	cmd.MarkFlagsMutuallyExclusive("index", "count")
	return cmd
}

// newChecker 根据 --probe 的形态选择本地目录或远端探测。
func newChecker(at string, eff config.EffectiveConfig) (probe.Checker, error) {
	if u, err := url.Parse(at); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return assets.HTTPChecker{
			Client:  httpx.NewProbeClient(eff.ProbeTimeout),
			BaseURL: strings.TrimRight(at, "/"),
		}, nil
	}
	fi, err := os.Stat(at)
	if err != nil {
		return nil, fmt.Errorf("探测目录不可用：%w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("探测目录不是目录：%s", at)
	}
	return assets.FSChecker{FS: os.DirFS(at)}, nil
}

func printCandidates(w io.Writer, list domain.CandidateList) {
	for i, p := range list {
		fmt.Fprintf(w, "%3d  %s\n", i, p)
	}
}

func printOutcome(w io.Writer, s probe.Snapshot) {
	switch s.State {
	case probe.StateDisplayed:
		fmt.Fprintf(w, "=> displayed #%d %s (attempts=%d)\n", s.Index, s.Path, s.Attempts)
	case probe.StateExhausted:
		fmt.Fprintf(w, "=> exhausted (candidates=%d)\n", s.Candidates)
	default:
		fmt.Fprintf(w, "=> %s\n", s.State)
	}
}
