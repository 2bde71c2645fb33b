//go:build !windows

package platform

import "github.com/dibs-cli/dibs/pkg/errors"

// newSystemRegistry is only reachable when a WindowsHandler is constructed
// off-Windows, which the factory prevents. It exists so the portable
// handler logic compiles and tests everywhere with a fake registry.
func newSystemRegistry() (registryAPI, error) {
	return nil, errors.New(errors.ErrUnsupportedPlatform,
		"the Windows registry is not available on this platform")
}
