package types

// Platform identifies the operating system family dibs is running on.
// It is determined once at process start and never changes afterwards.
type Platform string

const (
	PlatformMacOS       Platform = "macos"
	PlatformWindows     Platform = "windows"
	PlatformUnsupported Platform = "unsupported"
)

// Supported reports whether dibs can integrate with this platform's
// default-handler subsystem.
func (p Platform) Supported() bool {
	return p == PlatformMacOS || p == PlatformWindows
}

func (p Platform) String() string {
	return string(p)
}
