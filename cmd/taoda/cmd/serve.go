package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nygula/Taoda/internal/config"
	"github.com/nygula/Taoda/internal/server"
	"github.com/nygula/Taoda/internal/util"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port int
		dev  bool
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Example: `  taoda serve
  taoda serve --port 8080 --open`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			} else if !a.info.PortSpecified {
				// 未显式指定端口时，默认端口被占用则顺延
				p, err := util.FindAvailablePort(a.cfg.Server.Port, 20)
				if err != nil {
					return err
				}
				a.cfg.Server.Port = p
			}
			if dev {
				a.cfg.Server.DevMode = true
			}
			return runServe(cmd.Context(), a, open)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultConfig().Server.Port, "服务端口")
	cmd.Flags().BoolVar(&dev, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&open, "open", false, "启动后打开浏览器")
	return cmd
}

func runServe(ctx context.Context, a *app, open bool) error {
	srv, err := server.NewServer(a.cfg, a.version)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	url := fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", httpServer.Addr).Str("dataDir", config.ResolveDataDir(a.cfg)).Msg("server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	if open {
		if err := util.OpenPath(url); err != nil {
			a.logger.Warn().Err(err).Msgf("无法自动打开浏览器，请手动访问: %s", url)
		}
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("服务启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
