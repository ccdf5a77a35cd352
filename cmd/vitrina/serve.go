package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/vitrina/internal/assets"
	"github.com/John-Robertt/vitrina/internal/config"
	"github.com/John-Robertt/vitrina/internal/content"
	"github.com/John-Robertt/vitrina/internal/probe"
	"github.com/John-Robertt/vitrina/internal/resolve"
	"github.com/John-Robertt/vitrina/internal/web"
)

const shutdownGrace = 10 * time.Second

func (c *cli) newServeCmd() *cobra.Command {
	var (
		listen    string
		assetRoot string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动站点",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.load(cmd, config.CLIArgs{
				Listen:       listen,
				ListenSet:    cmd.Flags().Changed("listen"),
				AssetRoot:    assetRoot,
				AssetRootSet: cmd.Flags().Changed("assets"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", eff.Listen)
			if err != nil {
				return fmt.Errorf("监听 %s 失败：%w", eff.Listen, err)
			}
			return c.serve(ctx, eff, ln)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "监听地址（默认 "+config.DefaultListen+"）")
	cmd.Flags().StringVar(&assetRoot, "assets", "", "资源根目录，对外映射为 /static（默认 "+config.DefaultAssetRoot+"）")
	return cmd
}

// newSite 按生效配置组装 web.Server。
func newSite(eff config.EffectiveConfig, logger *zap.Logger) (*web.Server, *content.Store, error) {
	fi, err := os.Stat(eff.AssetRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("资源根目录不可用：%w", err)
	}
	if !fi.IsDir() {
		return nil, nil, fmt.Errorf("资源根目录不是目录：%s", eff.AssetRoot)
	}

	site, err := content.Load(eff.ContentPath)
	if err != nil {
		return nil, nil, err
	}
	store := content.NewStore(site)

	cache, err := resolve.NewCache(resolve.Resolver{Extensions: eff.ProbeExtensions}, 0)
	if err != nil {
		return nil, nil, err
	}

	fsys := os.DirFS(eff.AssetRoot)
	s, err := web.New(web.Options{
		Config:  eff,
		Content: store,
		Assets:  fsys,
		Cache:   cache,
		Prober: probe.Prober{
			Checker: assets.FSChecker{FS: fsys},
			Timeout: eff.ProbeTimeout,
			Limiter: probe.NewLimiter(eff.MaxInflight),
			Logger:  logger.Named("probe"),
		},
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, store, nil
}

// serve 在 ln 上提供服务，直到 ctx 取消后优雅退出。
func (c *cli) serve(ctx context.Context, eff config.EffectiveConfig, ln net.Listener) error {
	log := c.logger
	s, store, err := newSite(eff, log)
	if err != nil {
		_ = ln.Close()
		return err
	}

	if eff.ContentPath != "" {
		go func() {
			if err := store.Watch(ctx, eff.ContentPath, log.Named("content")); err != nil && ctx.Err() == nil {
				log.Warn("内容热更新不可用", zap.String("path", eff.ContentPath), zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          zap.NewStdLog(log.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	log.Info("站点已启动",
		zap.String("addr", ln.Addr().String()),
		zap.String("assets", eff.AssetRoot),
		zap.String("config", eff.Source),
		zap.String("content", eff.ContentPath),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("正在关闭")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("关闭失败：%w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
