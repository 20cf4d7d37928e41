package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned for a bundle without CERTIFICATE blocks.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// ClientConfig returns the TLS config for backend requests: the system
// roots plus every certificate in caFile. With no CA file it returns nil,
// which leaves net/http on its defaults.
func ClientConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: read %s: %w", caFile, err)
	}
	certs, err := ParseBundle(data)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: %s: %w", caFile, err)
	}
	return &tls.Config{
		RootCAs:    Roots(certs...),
		MinVersion: tls.VersionTLS12,
	}, nil
}

// ParseBundle decodes the CERTIFICATE blocks of a PEM bundle. Keys and
// other block types are skipped.
func ParseBundle(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate %d: %w", len(certs)+1, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, ErrNoCertsFound
	}
	return certs, nil
}

// Roots returns the system roots, or an empty pool where the platform has
// none, extended with certs.
func Roots(certs ...*x509.Certificate) *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}
