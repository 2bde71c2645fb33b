package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/rs/zerolog"
)

// registryAPI is the narrow slice of the per-user registry the Windows
// handler needs. Paths are relative to HKEY_CURRENT_USER. The production
// implementation (registry_windows.go) wraps golang.org/x/sys; tests use
// an in-memory fake.
type registryAPI interface {
	// ReadDefault returns the (Default) string value of the key at path.
	// A missing key or value returns ("", nil).
	ReadDefault(path string) (string, error)

	// WriteDefault creates the key at path if needed and sets its
	// (Default) value.
	WriteDefault(path, value string) error

	// DeleteTree removes the key at path and everything under it.
	// Deleting a missing key is not an error.
	DeleteTree(path string) error
}

// WindowsHandler integrates with the per-user registry: it registers a
// dibs-owned ProgID under HKCU\Software\Classes and points the extension
// key at it. Machine-wide associations are never touched.
type WindowsHandler struct {
	reg    registryAPI
	logger zerolog.Logger
}

func newWindowsHandler(opts Options) (*WindowsHandler, error) {
	reg := opts.Registry
	if reg == nil {
		sys, err := newSystemRegistry()
		if err != nil {
			return nil, err
		}
		reg = sys
	}
	return &WindowsHandler{
		reg:    reg,
		logger: logging.GetLogger("platform.windows"),
	}, nil
}

const classesRoot = `Software\Classes`

// progIDFor names the ProgID dibs registers for an extension, e.g.
// "dibs.md" for ".md".
func progIDFor(ext string) string {
	return "dibs." + types.NormalizeExtension(ext)
}

func extKeyPath(ext string) string {
	return classesRoot + `\.` + types.NormalizeExtension(ext)
}

func progIDKeyPath(ext string) string {
	return classesRoot + `\` + progIDFor(ext)
}

// VerifyApplication accepts an executable, or a directory holding one (the
// first .exe found wins). Metadata that cannot be resolved stays empty.
func (h *WindowsHandler) VerifyApplication(ctx context.Context, path string) (types.AppInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.AppInfo{}, errors.Wrapf(err, errors.ErrInvalidApplication, "invalid path %q", path)
	}
	abs = filepath.Clean(abs)

	fi, err := os.Stat(abs)
	if err != nil {
		return types.AppInfo{}, errors.Wrapf(err, errors.ErrInvalidApplication,
			"application not found at %s", abs)
	}

	exe := abs
	if fi.IsDir() {
		exe = firstExecutableIn(abs)
	}

	info := types.AppInfo{
		Path:           abs,
		Name:           strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		ExecutablePath: exe,
	}
	if exe != "" {
		info.Name = strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	}
	return info, nil
}

// GetCurrentDefault resolves the ProgID the extension key points at, then
// the executable from that ProgID's open command. The bare ProgID is
// returned when the command is unreadable; "" means no association visible
// in HKCU.
func (h *WindowsHandler) GetCurrentDefault(ctx context.Context, ext string) (string, error) {
	ext = types.NormalizeExtension(ext)
	if ext == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty extension")
	}

	progID, err := h.reg.ReadDefault(extKeyPath(ext))
	if err != nil {
		h.logger.Debug().Err(err).Str("ext", ext).Msg("extension key unreadable")
		return "", nil
	}
	if progID == "" {
		return "", nil
	}

	command, err := h.reg.ReadDefault(classesRoot + `\` + progID + `\shell\open\command`)
	if err != nil || command == "" {
		return progID, nil
	}
	if exe := commandExecutable(command); exe != "" {
		return exe, nil
	}
	return progID, nil
}

// SetDefault writes the dibs ProgID with an open command for the resolved
// executable and points the extension key at it, recording whatever the
// key held before.
func (h *WindowsHandler) SetDefault(ctx context.Context, ext, appPath string, dryRun bool) (types.OperationResult, error) {
	ext = types.NormalizeExtension(ext)
	if ext == "" {
		err := errors.New(errors.ErrInvalidInput, "empty extension")
		return failure(err), err
	}

	info, err := h.VerifyApplication(ctx, appPath)
	if err != nil {
		return failure(err), err
	}
	if info.ExecutablePath == "" {
		err := errors.Newf(errors.ErrMetadataUnresolvable,
			"no executable found under %s", info.Path).
			WithHint("point dibs at the .exe itself")
		return failure(err), err
	}
	if !strings.EqualFold(filepath.Ext(info.ExecutablePath), ".exe") {
		err := errors.Newf(errors.ErrInvalidApplication,
			"%s is not an executable", info.ExecutablePath)
		return failure(err), err
	}

	previous, _ := h.GetCurrentDefault(ctx, ext)
	progID := progIDFor(ext)

	if dryRun {
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("would register %s as %s for .%s", info.ExecutablePath, progID, ext),
			PreviousDefault: previous,
		}, nil
	}

	h.logger.Debug().Str("ext", ext).Str("progid", progID).
		Str("exe", info.ExecutablePath).Msg("writing registry association")

	command := fmt.Sprintf(`"%s" "%%1"`, info.ExecutablePath)
	writes := []struct{ path, value string }{
		{progIDKeyPath(ext), info.Name},
		{progIDKeyPath(ext) + `\shell\open\command`, command},
		{extKeyPath(ext), progID},
	}
	for _, w := range writes {
		if werr := h.reg.WriteDefault(w.path, w.value); werr != nil {
			rerr := wrapRegistryError(werr, "writing "+w.path)
			res := failure(rerr)
			res.PreviousDefault = previous
			return res, rerr
		}
	}

	return types.OperationResult{
		Success:         true,
		Message:         fmt.Sprintf("%s is now the default for .%s", info.Name, ext),
		PreviousDefault: previous,
	}, nil
}

// RemoveDefault deletes the dibs ProgID and, when the extension key still
// points at it, clears that association. Removing when dibs never
// registered anything is a successful no-op.
func (h *WindowsHandler) RemoveDefault(ctx context.Context, ext string, dryRun bool) (types.OperationResult, error) {
	ext = types.NormalizeExtension(ext)
	if ext == "" {
		err := errors.New(errors.ErrInvalidInput, "empty extension")
		return failure(err), err
	}

	progID := progIDFor(ext)
	current, err := h.reg.ReadDefault(extKeyPath(ext))
	if err != nil {
		rerr := wrapRegistryError(err, "reading "+extKeyPath(ext))
		return failure(rerr), rerr
	}

	previous, _ := h.GetCurrentDefault(ctx, ext)

	if current != progID {
		// Nothing of ours is registered; still sweep a stale ProgID key.
		if !dryRun {
			_ = h.reg.DeleteTree(progIDKeyPath(ext))
		}
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("no dibs association for .%s; nothing to remove", ext),
			PreviousDefault: previous,
		}, nil
	}

	if dryRun {
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("would remove the %s association for .%s", progID, ext),
			PreviousDefault: previous,
		}, nil
	}

	if werr := h.reg.WriteDefault(extKeyPath(ext), ""); werr != nil {
		rerr := wrapRegistryError(werr, "clearing "+extKeyPath(ext))
		res := failure(rerr)
		res.PreviousDefault = previous
		return res, rerr
	}
	if derr := h.reg.DeleteTree(progIDKeyPath(ext)); derr != nil {
		rerr := wrapRegistryError(derr, "deleting "+progIDKeyPath(ext))
		res := failure(rerr)
		res.PreviousDefault = previous
		return res, rerr
	}

	return types.OperationResult{
		Success:         true,
		Message:         fmt.Sprintf("removed the default for .%s", ext),
		PreviousDefault: previous,
	}, nil
}

// RestoreDefault reapplies a previously observed association. A bare
// ProgID is written straight back to the extension key; an executable path
// is re-registered through the dibs ProgID; "" clears the override.
func (h *WindowsHandler) RestoreDefault(ctx context.Context, ext, previous string) error {
	ext = types.NormalizeExtension(ext)
	if ext == "" {
		return errors.New(errors.ErrInvalidInput, "empty extension")
	}

	if previous == "" {
		if err := h.reg.WriteDefault(extKeyPath(ext), ""); err != nil {
			return wrapRegistryError(err, "clearing "+extKeyPath(ext))
		}
		return nil
	}

	if !strings.ContainsAny(previous, `\/`) {
		if err := h.reg.WriteDefault(extKeyPath(ext), previous); err != nil {
			return wrapRegistryError(err, "restoring "+extKeyPath(ext))
		}
		return nil
	}

	_, err := h.SetDefault(ctx, ext, previous, false)
	return err
}

// firstExecutableIn returns the first .exe directly inside dir, or "".
func firstExecutableIn(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".exe") {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// commandExecutable extracts the executable from a shell open command such
// as `"C:\Tools\app.exe" "%1"`.
func commandExecutable(command string) string {
	command = strings.TrimSpace(command)
	if strings.HasPrefix(command, `"`) {
		if end := strings.Index(command[1:], `"`); end >= 0 {
			return command[1 : end+1]
		}
		return ""
	}
	if idx := strings.IndexByte(command, ' '); idx >= 0 {
		return command[:idx]
	}
	return command
}

func wrapRegistryError(err error, action string) error {
	code := errors.ErrPlatformFailure
	hint := ""
	if isAccessDenied(err) {
		code = errors.ErrAccessDenied
		hint = "re-run from an elevated shell"
	}
	wrapped := errors.Wrapf(err, code, "registry operation failed while %s", action)
	if hint != "" {
		wrapped = wrapped.WithHint(hint)
	}
	return wrapped
}

func isAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	if os.IsPermission(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "access is denied")
}
