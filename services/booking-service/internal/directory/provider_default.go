//go:build !protogen

package directory

// NewProvider returns the HTTP snapshot client. The gRPC transport is only
// compiled in with the generated stubs.
func NewProvider(httpBaseURL, _ string) (Provider, error) {
	return NewHTTPClient(httpBaseURL), nil
}
