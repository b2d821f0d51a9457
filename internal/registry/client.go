// Package registry looks up container images in their OCI registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"go.uber.org/zap"
)

var (
	// ErrImageNotFound is returned when the registry does not have the image
	ErrImageNotFound = errors.New("image not found in registry")
	// ErrRegistryAccess is returned when the registry rejects the credentials
	ErrRegistryAccess = errors.New("registry access denied")
)

// Image describes an image found in a registry
type Image struct {
	Reference string `json:"reference" yaml:"reference"`
	Digest    string `json:"digest" yaml:"digest"`
	MediaType string `json:"mediaType" yaml:"mediaType"`
	Size      int64  `json:"size" yaml:"size"`
}

// Options configures a Client
type Options struct {
	// Keychain provides registry credentials, the docker config when nil
	Keychain authn.Keychain
	// Insecure allows plain http registries
	Insecure bool
	// Transport replaces the default http transport
	Transport http.RoundTripper
}

// Client looks up image manifests without pulling layers
type Client struct {
	keychain  authn.Keychain
	nameOpts  []name.Option
	transport http.RoundTripper
	logger    *zap.Logger
}

// NewClient creates a registry client
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	keychain := opts.Keychain
	if keychain == nil {
		keychain = authn.DefaultKeychain
	}
	c := &Client{keychain: keychain, transport: opts.Transport, logger: logger}
	if opts.Insecure {
		c.nameOpts = append(c.nameOpts, name.Insecure)
	}
	return c
}

// Head resolves an image reference to its manifest descriptor
func (c *Client) Head(ctx context.Context, image string) (*Image, error) {
	ref, err := name.ParseReference(image, c.nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference '%s': %w", image, err)
	}

	remoteOpts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(c.keychain),
	}
	if c.transport != nil {
		remoteOpts = append(remoteOpts, remote.WithTransport(c.transport))
	}

	c.logger.Debug("looking up image", zap.String("image", ref.Name()))
	desc, err := remote.Head(ref, remoteOpts...)
	if err != nil {
		return nil, classify(image, err)
	}
	return &Image{
		Reference: ref.Name(),
		Digest:    desc.Digest.String(),
		MediaType: string(desc.MediaType),
		Size:      desc.Size,
	}, nil
}

func classify(image string, err error) error {
	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrImageNotFound, image)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %v", ErrRegistryAccess, image, err)
		}
	}
	return fmt.Errorf("failed to look up image %s: %w", image, err)
}
