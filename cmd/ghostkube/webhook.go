package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/admission"
	"github.com/xxxsen/ghostkube/internal/middleware"
)

func newWebhookCmd(configPath *string) *cobra.Command {
	var addr, certFile, keyFile string
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "serve the pod mutating admission webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			wh := cfg.Webhook
			if addr == "" {
				addr = wh.Addr
			}
			if certFile == "" {
				certFile = wh.TLSCert
			}
			if keyFile == "" {
				keyFile = wh.TLSKey
			}
			mutator := admission.NewMutator(admission.WithLabel(wh.Label), admission.WithEnvName(wh.EnvName))

			engine := gin.New()
			engine.Use(gin.Recovery(), middleware.RequestID())
			admission.RegisterRoutes(engine.Group(""), mutator)
			srv := &http.Server{Addr: addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logutil.GetLogger(ctx).With(zap.String("addr", addr), zap.Bool("tls", certFile != ""))
			go func() {
				var err error
				if certFile != "" {
					err = srv.ListenAndServeTLS(certFile, keyFile)
				} else {
					err = srv.ListenAndServe()
				}
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("webhook server error", zap.Error(err))
					stop()
				}
			}()
			logger.Info("webhook listening")

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to webhook.addr")
	cmd.Flags().StringVar(&certFile, "tls-cert", "", "tls certificate file")
	cmd.Flags().StringVar(&keyFile, "tls-key", "", "tls key file")
	return cmd
}
