package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/vitrina/internal/audit"
	"github.com/John-Robertt/vitrina/internal/config"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/infra/fsx"
	"github.com/John-Robertt/vitrina/internal/infra/httpx"
)

func (c *cli) newAuditCmd() *cobra.Command {
	var (
		base        string
		out         string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "抓取运行中的站点并核对所有图片槽位",
		Long: `从 /es/ 与 /en/ 开始广度优先抓取站内页面，解析每个图片槽位，
并逐个请求已渲染的 img 确认其可加载。

stdout 非终端时只输出一个 AuditReport JSON；进度与摘要写 stderr。
存在 broken 槽位或抓取失败的页面时退出码为 1。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(base) == "" {
				return fmt.Errorf("--base 不能为空")
			}

			eff, err := c.load(cmd, config.CLIArgs{
				Concurrency:    concurrency,
				ConcurrencySet: cmd.Flags().Changed("concurrency"),
			})
			if err != nil {
				emitReport(c.stdout, c.stderr, reportForError(base, config.Code(err), err))
				return &exitError{code: 1}
			}

			client, err := httpx.NewCrawlClient(eff.AuditProxyURL)
			if err != nil {
				emitReport(c.stdout, c.stderr, reportForError(base, domain.ErrCodeConfigInvalid, err))
				return &exitError{code: 1}
			}

			var obs audit.Observer
			if isTTY(c.stderr) {
				ui := newProgressUI(c.stderr)
				defer ui.Close()
				obs = ui
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep := audit.Execute(ctx, audit.OptionsFrom(eff, base), client, obs)
			c.logger.Debug("审计完成",
				zap.Int("pages", rep.Summary.Pages),
				zap.Int("slots", rep.Summary.Slots),
				zap.Int("broken", rep.Summary.Broken),
			)

			if out != "" {
				if err := writeReportFile(out, rep); err != nil {
					fmt.Fprintf(c.stderr, "写入报告失败：%v\n", err)
					emitReport(c.stdout, c.stderr, rep)
					return &exitError{code: 1}
				}
			}

			emitReport(c.stdout, c.stderr, rep)
			if out != "" && isTTY(c.stderr) {
				fmt.Fprintf(c.stderr, "report: %s\n", out)
			}
			if rep.Summary.Broken > 0 || rep.Summary.PagesFailed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "站点根 URL，例如 http://127.0.0.1:8080")
	cmd.Flags().StringVar(&out, "out", "", "同时把报告原子写入该文件")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, fmt.Sprintf("并发抓取数（默认 %d）", config.DefaultConcurrency))
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

// emitReport 输出最终报告：stdout 是终端时只打印摘要；否则 stdout 只有一个 JSON，摘要走 stderr。
func emitReport(stdout, stderr io.Writer, rep domain.AuditReport) {
	if isTTY(stdout) {
		fmt.Fprintln(stdout, summaryLine(rep))
		for _, p := range rep.Pages {
			if p.Status == domain.PageStatusFailed {
				fmt.Fprintf(stderr, "%s %s: %s\n", p.URL, p.ErrorCode, p.ErrorMsg)
			}
		}
		for _, s := range rep.Slots {
			if s.Status == domain.SlotBroken {
				fmt.Fprintf(stderr, "%s#%s %s: %s\n", s.Page, s.Slot, s.ErrorCode, s.ErrorMsg)
			}
		}
		return
	}

	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rep)
	fmt.Fprintln(stderr, summaryLine(rep))
}

func summaryLine(rep domain.AuditReport) string {
	s := rep.Summary
	return fmt.Sprintf("完成：pages=%d failed=%d slots=%d displayed=%d placeholder=%d loading=%d broken=%d",
		s.Pages, s.PagesFailed, s.Slots, s.Displayed, s.Placeholder, s.Loading, s.Broken,
	)
}

// reportForError 把启动阶段的错误包装成只含一个失败页面的报告，保持 stdout 契约。
func reportForError(base, code string, err error) domain.AuditReport {
	now := time.Now().UTC()
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rep := domain.AuditReport{
		Base:       strings.TrimRight(strings.TrimSpace(base), "/"),
		StartedAt:  now,
		FinishedAt: now,
		Pages: []domain.PageResult{{
			URL:       strings.TrimSpace(base),
			Status:    domain.PageStatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rep.Finalize()
	return rep
}

func writeReportFile(path string, rep domain.AuditReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(path, b)
}
