package webserver

import (
	"context"
	"crypto/tls"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const certCheckInterval = 5 * time.Minute

// CertReloader serves a certificate pair from disk and picks up renewed files.
type CertReloader struct {
	certFile string
	keyFile  string

	mu          sync.RWMutex
	cert        *tls.Certificate
	lastModCert time.Time
	lastModKey  time.Time
	log         *zap.Logger
}

func NewCertReloader(certFile, keyFile string) (*CertReloader, error) {
	r := &CertReloader{certFile: certFile, keyFile: keyFile, log: zap.L().Named("tls")}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	certInfo, _ := os.Stat(r.certFile)
	keyInfo, _ := os.Stat(r.keyFile)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cert = &cert
	if certInfo != nil {
		r.lastModCert = certInfo.ModTime()
	}
	if keyInfo != nil {
		r.lastModKey = keyInfo.ModTime()
	}
	return nil
}

// changed reports whether either file was modified since the last load.
func (r *CertReloader) changed() (bool, error) {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false, err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return certInfo.ModTime().After(r.lastModCert) || keyInfo.ModTime().After(r.lastModKey), nil
}

// Watch reloads the pair when the files change, until ctx is done.
func (r *CertReloader) Watch(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := r.changed()
			if err != nil {
				r.log.Warn("stat certificate failed", zap.Error(err))
				continue
			}
			if !changed {
				continue
			}
			if err := r.reload(); err != nil {
				r.log.Error("reload certificate failed", zap.Error(err))
				continue
			}
			r.log.Info("certificate reloaded")
		}
	}
}

func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

func (r *CertReloader) TLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		},
	}
}
