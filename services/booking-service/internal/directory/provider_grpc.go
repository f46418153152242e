//go:build protogen

package directory

import "strings"

// NewProvider prefers the gRPC transport when an address is configured and
// falls back to HTTP otherwise.
func NewProvider(httpBaseURL, grpcAddr string) (Provider, error) {
	if strings.TrimSpace(grpcAddr) != "" {
		return NewGRPCClient(grpcAddr)
	}
	return NewHTTPClient(httpBaseURL), nil
}
