package webserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/api/config"
)

const shutdownTimeout = 10 * time.Second

// ListenAndServe runs the gateway until ctx is done, over TLS when a certificate pair is
// configured, and then shuts it down gracefully.
func ListenAndServe(ctx context.Context, cfg config.Config, handler http.Handler) error {
	log := zap.L().Named("webserver")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tlsOn := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	if tlsOn {
		certs, err := NewCertReloader(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return err
		}
		srv.TLSConfig = certs.TLSConfig()
		go certs.Watch(ctx, certCheckInterval)
	}

	errs := make(chan error, 1)
	go func() {
		var err error
		if tlsOn {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	log.Info("gateway listening", zap.String("port", cfg.Port), zap.Bool("tls", tlsOn))

	select {
	case err, ok := <-errs:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
