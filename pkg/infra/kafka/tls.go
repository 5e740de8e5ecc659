package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// TLSMaterial points at the PEM files securing the broker connection. All
// three are required when the SSL protocol is selected; a partial set is a
// configuration error that must stop the process before it consumes.
type TLSMaterial struct {
	ClusterCAPath  string
	ClientCertPath string
	ClientKeyPath  string
}

// Load builds a tls.Config from the material
func (m TLSMaterial) Load() (*tls.Config, error) {
	if m.ClusterCAPath == "" || m.ClientCertPath == "" || m.ClientKeyPath == "" {
		return nil, goerr.New("incomplete Kafka TLS material",
			goerr.V("cluster_ca", m.ClusterCAPath),
			goerr.V("client_cert", m.ClientCertPath),
			goerr.V("client_key", m.ClientKeyPath),
		)
	}

	caPEM, err := os.ReadFile(m.ClusterCAPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cluster CA certificate",
			goerr.V("path", m.ClusterCAPath))
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, goerr.New("cluster CA certificate contains no usable PEM data",
			goerr.V("path", m.ClusterCAPath))
	}

	cert, err := tls.LoadX509KeyPair(m.ClientCertPath, m.ClientKeyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load client certificate pair",
			goerr.V("cert", m.ClientCertPath),
			goerr.V("key", m.ClientKeyPath))
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
