package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig contains TLS options for the platform REST client
type TLSConfig struct {
	// CAFile is the path to an additional certificate authority bundle
	CAFile string `mapstructure:"ca-file"`

	// SkipVerify disables certificate verification if true
	SkipVerify bool `mapstructure:"skip-verify"`
}

// Validate checks if the TLS configuration is valid
func (c TLSConfig) Validate() error {
	if c.CAFile == "" {
		return nil
	}
	if _, err := os.Stat(c.CAFile); os.IsNotExist(err) {
		return fmt.Errorf("CA file does not exist: %s", c.CAFile)
	}
	return nil
}

// ClientConfig builds the tls.Config used by the REST client. It returns nil
// when the system defaults apply.
func (c TLSConfig) ClientConfig() (*tls.Config, error) {
	if c.CAFile == "" && !c.SkipVerify {
		return nil, nil
	}

	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.SkipVerify,
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA certificates from %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
