package platform

import (
	"runtime"
	"sync"
	"time"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

// DefaultTimeout bounds every platform call. The OS subsystems impose
// process-spawn and registry latency; ten seconds covers Launch Services
// registration with margin.
const DefaultTimeout = 10 * time.Second

// Options configures handler construction. Zero values fall back to
// sensible defaults; Runner and Registry exist for tests.
type Options struct {
	Timeout  time.Duration
	DutiPath string

	Runner   Runner
	Registry registryAPI
}

// Detect returns the platform dibs is running on. The result is a pure
// function of the runtime OS identifier and never changes for a process.
func Detect() types.Platform {
	return detectFrom(runtime.GOOS)
}

func detectFrom(goos string) types.Platform {
	switch goos {
	case "darwin":
		return types.PlatformMacOS
	case "windows":
		return types.PlatformWindows
	default:
		return types.PlatformUnsupported
	}
}

var (
	factoryMu sync.Mutex
	factory   struct {
		opts    Options
		handler Handler
		err     error
		built   bool
	}
)

// Configure sets the options the next GetHandler call constructs with and
// discards any cached handler. Call it before the first GetHandler.
func Configure(opts Options) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factory.opts = opts
	factory.handler = nil
	factory.err = nil
	factory.built = false
}

// GetHandler lazily constructs and caches exactly one handler for the
// process. On an unsupported platform it fails with UNSUPPORTED_PLATFORM
// rather than returning a no-op handler; callers never special-case a
// missing handler. The cached handler is effectively read-only and safe to
// share.
func GetHandler() (Handler, error) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if factory.built {
		return factory.handler, factory.err
	}
	factory.handler, factory.err = build(Detect(), factory.opts)
	factory.built = true
	return factory.handler, factory.err
}

// Reset discards the cached handler and options. Test isolation hook.
func Reset() {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factory.opts = Options{}
	factory.handler = nil
	factory.err = nil
	factory.built = false
}

func build(p types.Platform, opts Options) (Handler, error) {
	switch p {
	case types.PlatformMacOS:
		return newDarwinHandler(opts), nil
	case types.PlatformWindows:
		return newWindowsHandler(opts)
	default:
		return nil, errors.Newf(errors.ErrUnsupportedPlatform,
			"default-handler integration is not supported on %s", runtime.GOOS).
			WithHint("dibs supports macOS and Windows only")
	}
}

// NewDarwinHandler builds a macOS handler directly, bypassing detection.
// Exposed for tests and for tooling that targets a specific platform.
func NewDarwinHandler(opts Options) Handler {
	return newDarwinHandler(opts)
}

// NewWindowsHandler builds a Windows handler directly, bypassing
// detection. Construction fails off-Windows unless opts.Registry is set.
func NewWindowsHandler(opts Options) (Handler, error) {
	return newWindowsHandler(opts)
}
