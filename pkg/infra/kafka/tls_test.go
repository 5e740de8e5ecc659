package kafka_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/infra/kafka"
)

// writeTestCert writes a self-signed certificate and its key as PEM files
func writeTestCert(t *testing.T, dir string) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	gt.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	gt.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	gt.NoError(t, err)

	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	gt.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{
		Type: "CERTIFICATE", Bytes: der,
	}), 0o600))
	gt.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{
		Type: "EC PRIVATE KEY", Bytes: keyDER,
	}), 0o600))
	return certPath, keyPath
}

func TestTLSMaterialLoad(t *testing.T) {
	t.Run("complete material", func(t *testing.T) {
		dir := t.TempDir()
		certPath, keyPath := writeTestCert(t, dir)

		cfg, err := kafka.TLSMaterial{
			ClusterCAPath:  certPath,
			ClientCertPath: certPath,
			ClientKeyPath:  keyPath,
		}.Load()
		gt.NoError(t, err)
		gt.NotNil(t, cfg.RootCAs)
		gt.Equal(t, len(cfg.Certificates), 1)
	})

	t.Run("partial material is an error", func(t *testing.T) {
		dir := t.TempDir()
		certPath, keyPath := writeTestCert(t, dir)

		_, err := kafka.TLSMaterial{
			ClientCertPath: certPath,
			ClientKeyPath:  keyPath,
		}.Load()
		gt.Error(t, err)
	})

	t.Run("missing files are an error", func(t *testing.T) {
		_, err := kafka.TLSMaterial{
			ClusterCAPath:  "/nonexistent/ca.pem",
			ClientCertPath: "/nonexistent/cert.pem",
			ClientKeyPath:  "/nonexistent/key.pem",
		}.Load()
		gt.Error(t, err)
	})

	t.Run("garbage CA is an error", func(t *testing.T) {
		dir := t.TempDir()
		certPath, keyPath := writeTestCert(t, dir)

		caPath := filepath.Join(dir, "ca.pem")
		gt.NoError(t, os.WriteFile(caPath, []byte("not pem"), 0o600))

		_, err := kafka.TLSMaterial{
			ClusterCAPath:  caPath,
			ClientCertPath: certPath,
			ClientKeyPath:  keyPath,
		}.Load()
		gt.Error(t, err)
	})
}
