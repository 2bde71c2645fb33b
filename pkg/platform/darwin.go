package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/typeid"
	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/rs/zerolog"
	"howett.net/plist"
)

// DarwinHandler integrates with Launch Services through the duti helper,
// with an osascript/System Events fallback for queries when duti is not
// installed. Mutations require duti; queries degrade to "unknown".
type DarwinHandler struct {
	run      Runner
	dutiPath string
	logger   zerolog.Logger
}

func newDarwinHandler(opts Options) *DarwinHandler {
	run := opts.Runner
	if run == nil {
		run = NewExecRunner(opts.Timeout)
	}
	return &DarwinHandler{
		run:      run,
		dutiPath: opts.DutiPath,
		logger:   logging.GetLogger("platform.darwin"),
	}
}

// bundleManifest is the subset of Info.plist dibs reads.
type bundleManifest struct {
	BundleID    string `plist:"CFBundleIdentifier"`
	Name        string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
	Executable  string `plist:"CFBundleExecutable"`
}

// systemDefaultHandlers maps each supported type identifier to the bundle
// that ships as the OS-wide default. RemoveDefault resets to these, since
// Launch Services has no true "unset" operation.
var systemDefaultHandlers = map[string]string{
	"net.daringfireball.markdown":        "com.apple.TextEdit",
	"public.plain-text":                  "com.apple.TextEdit",
	"public.comma-separated-values-text": "com.apple.TextEdit",
	"public.json":                        "com.apple.TextEdit",
	"public.xml":                         "com.apple.TextEdit",
	"public.yaml":                        "com.apple.TextEdit",
	"public.html":                        "com.apple.Safari",
	"com.adobe.pdf":                      "com.apple.Preview",
	"public.png":                         "com.apple.Preview",
	"public.jpeg":                        "com.apple.Preview",
	"public.rtf":                         "com.apple.TextEdit",
	"public.shell-script":                "com.apple.TextEdit",
}

// VerifyApplication walks up from path to the enclosing .app bundle and
// reads its Info.plist. A bundle with an unreadable manifest still verifies;
// the bundle identifier is then resolved through mdls, and stays empty if
// that fails too. Only a nonexistent path is an error.
func (h *DarwinHandler) VerifyApplication(ctx context.Context, path string) (types.AppInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.AppInfo{}, errors.Wrapf(err, errors.ErrInvalidApplication, "invalid path %q", path)
	}
	abs = filepath.Clean(abs)

	if _, err := os.Stat(abs); err != nil {
		return types.AppInfo{}, errors.Wrapf(err, errors.ErrInvalidApplication,
			"application not found at %s", abs)
	}

	bundle := enclosingBundle(abs)
	if bundle == "" {
		// Bare executable outside a bundle. Usable for display but not
		// for SetDefault, which needs a bundle identifier.
		return types.AppInfo{
			Path:           abs,
			Name:           filepath.Base(abs),
			ExecutablePath: abs,
		}, nil
	}

	info := types.AppInfo{
		Path: bundle,
		Name: strings.TrimSuffix(filepath.Base(bundle), ".app"),
	}

	manifest, err := readBundleManifest(bundle)
	if err != nil {
		h.logger.Debug().Err(err).Str("bundle", bundle).Msg("Info.plist unreadable, falling back to mdls")
		info.BundleOrProgID = h.bundleIDFromMDLS(ctx, bundle)
		return info, nil
	}

	info.BundleOrProgID = manifest.BundleID
	if manifest.DisplayName != "" {
		info.Name = manifest.DisplayName
	} else if manifest.Name != "" {
		info.Name = manifest.Name
	}
	if manifest.Executable != "" {
		info.ExecutablePath = filepath.Join(bundle, "Contents", "MacOS", manifest.Executable)
	}
	if info.BundleOrProgID == "" {
		info.BundleOrProgID = h.bundleIDFromMDLS(ctx, bundle)
	}

	return info, nil
}

// GetCurrentDefault asks duti first and falls back to the slower
// osascript/System Events query. Both unavailable means "unknown", never
// an error.
func (h *DarwinHandler) GetCurrentDefault(ctx context.Context, ext string) (string, error) {
	ext = types.NormalizeExtension(ext)
	if ext == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty extension")
	}

	if duti, err := h.dutiBinary(); err == nil {
		out, err := h.run.Run(ctx, duti, "-x", ext)
		if err != nil {
			// duti exits non-zero when no handler is registered; that
			// is indistinguishable from "unknown" for our purposes.
			h.logger.Debug().Err(err).Str("ext", ext).Msg("duti query failed")
			return "", nil
		}
		// duti -x prints: display name, path, bundle identifier.
		lines := strings.Split(out, "\n")
		if id := strings.TrimSpace(lines[len(lines)-1]); id != "" {
			return id, nil
		}
		return "", nil
	}

	return h.queryViaSystemEvents(ctx, ext), nil
}

// queryViaSystemEvents is the native-API fallback: it asks System Events
// for the default application of a scratch file with the right extension
// and parses the returned HFS alias.
func (h *DarwinHandler) queryViaSystemEvents(ctx context.Context, ext string) string {
	tempPath := filepath.Join(os.TempDir(), "dibs-query."+ext)
	f, err := os.Create(tempPath)
	if err != nil {
		return ""
	}
	f.Close()
	defer os.Remove(tempPath)

	script := fmt.Sprintf(
		`tell application "System Events" to get default application of (info for (POSIX file %q))`,
		tempPath)
	out, err := h.run.Run(ctx, "osascript", "-e", script)
	if err != nil {
		return ""
	}

	appPath := hfsAliasToPath(out)
	if appPath == "" {
		return ""
	}
	if id := h.bundleIDFromMDLS(ctx, appPath); id != "" {
		return id
	}
	return appPath
}

// SetDefault registers appPath's bundle as the handler for ext's type
// identifier via duti. The previous default is captured before mutating and
// attached to the result either way.
func (h *DarwinHandler) SetDefault(ctx context.Context, ext, appPath string, dryRun bool) (types.OperationResult, error) {
	ext = types.NormalizeExtension(ext)

	uti, ok := typeid.ToTypeID(ext)
	if !ok {
		err := errors.Newf(errors.ErrPlatformFailure,
			"no type identifier registered for .%s", ext).
			WithHint("run 'dibs docs extensions' for the supported set")
		return failure(err), err
	}

	info, err := h.VerifyApplication(ctx, appPath)
	if err != nil {
		return failure(err), err
	}
	if info.BundleOrProgID == "" {
		err := errors.Newf(errors.ErrMetadataUnresolvable,
			"could not determine a bundle identifier for %s", info.Path).
			WithHint("point dibs at a .app bundle, not a bare executable")
		return failure(err), err
	}

	previous, _ := h.GetCurrentDefault(ctx, ext)

	if dryRun {
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("would set %s (%s) as default for .%s", info.Name, info.BundleOrProgID, ext),
			PreviousDefault: previous,
		}, nil
	}

	duti, lookErr := h.dutiBinary()
	if lookErr != nil {
		err := errors.Wrap(lookErr, errors.ErrPlatformFailure,
			"duti is required to change default handlers").
			WithHint("install it with 'brew install duti'")
		return failure(err), err
	}

	h.logger.Debug().Str("ext", ext).Str("uti", uti).
		Str("bundle", info.BundleOrProgID).Msg("registering default handler")

	if _, runErr := h.run.Run(ctx, duti, "-s", info.BundleOrProgID, uti, "all"); runErr != nil {
		res := failure(runErr)
		res.PreviousDefault = previous
		return res, runErr
	}

	return types.OperationResult{
		Success:         true,
		Message:         fmt.Sprintf("%s is now the default for .%s", info.Name, ext),
		PreviousDefault: previous,
	}, nil
}

// RemoveDefault resets ext's type identifier to the OS-wide default
// handler; Launch Services has no removal primitive. Removing when nothing
// custom is set is a successful no-op.
func (h *DarwinHandler) RemoveDefault(ctx context.Context, ext string, dryRun bool) (types.OperationResult, error) {
	ext = types.NormalizeExtension(ext)

	uti, ok := typeid.ToTypeID(ext)
	if !ok {
		return types.OperationResult{
			Success: true,
			Message: fmt.Sprintf("no type identifier for .%s; nothing to remove", ext),
		}, nil
	}

	system := systemDefaultHandlers[uti]
	previous, _ := h.GetCurrentDefault(ctx, ext)

	if previous == "" || previous == system {
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("no custom default set for .%s", ext),
			PreviousDefault: previous,
		}, nil
	}

	if dryRun {
		return types.OperationResult{
			Success:         true,
			Message:         fmt.Sprintf("would reset .%s to %s", ext, system),
			PreviousDefault: previous,
		}, nil
	}

	duti, lookErr := h.dutiBinary()
	if lookErr != nil {
		err := errors.Wrap(lookErr, errors.ErrPlatformFailure,
			"duti is required to change default handlers").
			WithHint("install it with 'brew install duti'")
		return failure(err), err
	}

	if _, runErr := h.run.Run(ctx, duti, "-s", system, uti, "all"); runErr != nil {
		res := failure(runErr)
		res.PreviousDefault = previous
		return res, runErr
	}

	return types.OperationResult{
		Success:         true,
		Message:         fmt.Sprintf(".%s reset to %s", ext, system),
		PreviousDefault: previous,
	}, nil
}

// RestoreDefault reapplies a previously observed default. A path is first
// resolved back to its bundle identifier, since duti registers by bundle.
func (h *DarwinHandler) RestoreDefault(ctx context.Context, ext, previous string) error {
	ext = types.NormalizeExtension(ext)
	if previous == "" {
		return nil
	}

	uti, ok := typeid.ToTypeID(ext)
	if !ok {
		return errors.Newf(errors.ErrPlatformFailure,
			"no type identifier registered for .%s", ext)
	}

	bundleID := previous
	if strings.HasPrefix(previous, "/") {
		bundleID = h.bundleIDFromMDLS(ctx, previous)
		if bundleID == "" {
			return errors.Newf(errors.ErrMetadataUnresolvable,
				"could not resolve a bundle identifier for %s", previous)
		}
	}

	duti, err := h.dutiBinary()
	if err != nil {
		return errors.Wrap(err, errors.ErrPlatformFailure,
			"duti is required to restore the previous handler")
	}

	_, err = h.run.Run(ctx, duti, "-s", bundleID, uti, "all")
	return err
}

func (h *DarwinHandler) dutiBinary() (string, error) {
	if h.dutiPath != "" {
		if _, err := os.Stat(h.dutiPath); err != nil {
			return "", err
		}
		return h.dutiPath, nil
	}
	return h.run.LookPath("duti")
}

func (h *DarwinHandler) bundleIDFromMDLS(ctx context.Context, appPath string) string {
	out, err := h.run.Run(ctx, "mdls", "-name", "kMDItemCFBundleIdentifier", "-raw", appPath)
	if err != nil || out == "(null)" {
		return ""
	}
	return out
}

// enclosingBundle walks up from path until it finds a .app directory,
// returning "" when there is none.
func enclosingBundle(path string) string {
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		if strings.HasSuffix(p, ".app") {
			return p
		}
	}
	return ""
}

func readBundleManifest(bundle string) (*bundleManifest, error) {
	data, err := os.ReadFile(filepath.Join(bundle, "Contents", "Info.plist"))
	if err != nil {
		return nil, err
	}
	var m bundleManifest
	if _, err := plist.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing Info.plist: %w", err)
	}
	return &m, nil
}

// hfsAliasToPath converts System Events alias output such as
// "alias Macintosh HD:Applications:Numbers.app:" to a POSIX path.
func hfsAliasToPath(alias string) string {
	alias = strings.TrimSpace(alias)
	if !strings.HasPrefix(alias, "alias ") {
		return ""
	}
	hfs := strings.TrimSuffix(strings.TrimPrefix(alias, "alias "), ":")
	colon := strings.Index(hfs, ":")
	if colon < 0 {
		return ""
	}
	return strings.ReplaceAll(hfs[colon:], ":", "/")
}

// failure builds the OperationResult mirror of a handler error.
func failure(err error) types.OperationResult {
	return types.OperationResult{
		Success:   false,
		Message:   err.Error(),
		ErrorCode: string(errors.CodeOf(err)),
	}
}
