package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner serves canned output keyed by the full command line and
// records every invocation.
type fakeRunner struct {
	responses map[string]string
	errs      map[string]error
	paths     map[string]string
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		paths:     make(map[string]string),
	}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", errors.Newf(errors.ErrPlatformFailure, "%s failed: unexpected invocation", name)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

func (f *fakeRunner) mutationCalls() []string {
	var muts []string
	for _, c := range f.calls {
		if strings.Contains(c, " -s ") {
			muts = append(muts, c)
		}
	}
	return muts
}

// writeAppBundle lays out a minimal .app with an XML Info.plist.
func writeAppBundle(t *testing.T, dir, name, bundleID string) string {
	t.Helper()
	bundle := filepath.Join(dir, name+".app")
	contents := filepath.Join(bundle, "Contents")
	require.NoError(t, os.MkdirAll(filepath.Join(contents, "MacOS"), 0755))

	manifest := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>%s</string>
	<key>CFBundleName</key>
	<string>%s</string>
	<key>CFBundleExecutable</key>
	<string>%s</string>
</dict>
</plist>
`, bundleID, name, name)
	require.NoError(t, os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(manifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(contents, "MacOS", name), []byte("#!/bin/sh\n"), 0755))
	return bundle
}

func newTestDarwinHandler(run Runner) *DarwinHandler {
	return newDarwinHandler(Options{Runner: run, DutiPath: ""})
}

func TestDarwinVerifyApplication(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")
	h := newTestDarwinHandler(newFakeRunner())

	info, err := h.VerifyApplication(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, bundle, info.Path)
	assert.Equal(t, "Code", info.Name)
	assert.Equal(t, "com.microsoft.VSCode", info.BundleOrProgID)
	assert.Equal(t, filepath.Join(bundle, "Contents", "MacOS", "Code"), info.ExecutablePath)
}

func TestDarwinVerifyApplicationInsideBundle(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")
	h := newTestDarwinHandler(newFakeRunner())

	// Pointing at the inner executable resolves the enclosing bundle.
	info, err := h.VerifyApplication(context.Background(), filepath.Join(bundle, "Contents", "MacOS", "Code"))
	require.NoError(t, err)
	assert.Equal(t, bundle, info.Path)
	assert.Equal(t, "com.microsoft.VSCode", info.BundleOrProgID)
}

func TestDarwinVerifyApplicationMissingManifest(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "Bare.app")
	require.NoError(t, os.MkdirAll(bundle, 0755))

	run := newFakeRunner()
	run.responses["mdls -name kMDItemCFBundleIdentifier -raw "+bundle] = "com.example.Bare"
	h := newTestDarwinHandler(run)

	info, err := h.VerifyApplication(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, "com.example.Bare", info.BundleOrProgID)
}

func TestDarwinVerifyApplicationMetadataDegrades(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "Opaque.app")
	require.NoError(t, os.MkdirAll(bundle, 0755))

	run := newFakeRunner()
	run.responses["mdls -name kMDItemCFBundleIdentifier -raw "+bundle] = "(null)"
	h := newTestDarwinHandler(run)

	// Missing metadata is reported as empty fields, never as an error.
	info, err := h.VerifyApplication(context.Background(), bundle)
	require.NoError(t, err)
	assert.Empty(t, info.BundleOrProgID)
	assert.Equal(t, "Opaque", info.Name)
}

func TestDarwinVerifyApplicationNotFound(t *testing.T) {
	h := newTestDarwinHandler(newFakeRunner())

	_, err := h.VerifyApplication(context.Background(), "/Applications/Nope.app")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidApplication, errors.CodeOf(err))
}

func TestDarwinGetCurrentDefaultViaDuti(t *testing.T) {
	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "Visual Studio Code\n/Applications/Code.app\ncom.microsoft.VSCode"
	h := newTestDarwinHandler(run)

	got, err := h.GetCurrentDefault(context.Background(), ".md")
	require.NoError(t, err)
	assert.Equal(t, "com.microsoft.VSCode", got)
}

func TestDarwinGetCurrentDefaultNoHandler(t *testing.T) {
	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.errs["/usr/local/bin/duti -x md"] = errors.New(errors.ErrPlatformFailure, "duti failed: no handler")
	h := newTestDarwinHandler(run)

	// An unanswerable query is "unknown", not an error.
	got, err := h.GetCurrentDefault(context.Background(), "md")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDarwinGetCurrentDefaultSystemEventsFallback(t *testing.T) {
	run := newFakeRunner() // no duti on PATH
	tempPath := filepath.Join(os.TempDir(), "dibs-query.md")
	script := fmt.Sprintf(
		`tell application "System Events" to get default application of (info for (POSIX file %q))`,
		tempPath)
	run.responses["osascript -e "+script] = "alias Macintosh HD:Applications:Numbers.app:"
	run.responses["mdls -name kMDItemCFBundleIdentifier -raw /Applications/Numbers.app"] = "com.apple.iWork.Numbers"
	h := newTestDarwinHandler(run)

	got, err := h.GetCurrentDefault(context.Background(), "md")
	require.NoError(t, err)
	assert.Equal(t, "com.apple.iWork.Numbers", got)
}

func TestDarwinGetCurrentDefaultAllHelpersAbsent(t *testing.T) {
	run := newFakeRunner()
	h := newTestDarwinHandler(run)

	got, err := h.GetCurrentDefault(context.Background(), "md")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDarwinSetDefault(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")

	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "TextEdit\n/System/Applications/TextEdit.app\ncom.apple.TextEdit"
	run.responses["/usr/local/bin/duti -s com.microsoft.VSCode net.daringfireball.markdown all"] = ""
	h := newTestDarwinHandler(run)

	res, err := h.SetDefault(context.Background(), ".md", bundle, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "com.apple.TextEdit", res.PreviousDefault)
	assert.Contains(t, run.calls, "/usr/local/bin/duti -s com.microsoft.VSCode net.daringfireball.markdown all")
}

func TestDarwinSetDefaultDryRun(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")

	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "TextEdit\n/System/Applications/TextEdit.app\ncom.apple.TextEdit"
	h := newTestDarwinHandler(run)

	res, err := h.SetDefault(context.Background(), "md", bundle, true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "com.apple.TextEdit", res.PreviousDefault)
	assert.Contains(t, res.Message, "would set")
	assert.Empty(t, run.mutationCalls(), "dry run must not mutate")
}

func TestDarwinSetDefaultUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")
	h := newTestDarwinHandler(newFakeRunner())

	res, err := h.SetDefault(context.Background(), "xyz", bundle, false)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, errors.ErrPlatformFailure, errors.CodeOf(err))
	assert.Equal(t, string(errors.ErrPlatformFailure), res.ErrorCode)
}

func TestDarwinSetDefaultNoBundleID(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))

	run := newFakeRunner()
	h := newTestDarwinHandler(run)

	res, err := h.SetDefault(context.Background(), "md", exe, false)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, errors.ErrMetadataUnresolvable, errors.CodeOf(err))
}

func TestDarwinSetDefaultAccessDenied(t *testing.T) {
	dir := t.TempDir()
	bundle := writeAppBundle(t, dir, "Code", "com.microsoft.VSCode")

	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "x\ny\ncom.apple.TextEdit"
	run.errs["/usr/local/bin/duti -s com.microsoft.VSCode net.daringfireball.markdown all"] =
		errors.New(errors.ErrAccessDenied, "duti failed: operation not permitted")
	h := newTestDarwinHandler(run)

	res, err := h.SetDefault(context.Background(), "md", bundle, false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrAccessDenied, errors.CodeOf(err))
	assert.Equal(t, "com.apple.TextEdit", res.PreviousDefault)
}

func TestDarwinRemoveDefaultResetsToSystemHandler(t *testing.T) {
	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "Code\n/Applications/Code.app\ncom.microsoft.VSCode"
	run.responses["/usr/local/bin/duti -s com.apple.TextEdit net.daringfireball.markdown all"] = ""
	h := newTestDarwinHandler(run)

	res, err := h.RemoveDefault(context.Background(), "md", false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "com.microsoft.VSCode", res.PreviousDefault)
	assert.Contains(t, run.calls, "/usr/local/bin/duti -s com.apple.TextEdit net.daringfireball.markdown all")
}

func TestDarwinRemoveDefaultIdempotent(t *testing.T) {
	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "TextEdit\n/System/Applications/TextEdit.app\ncom.apple.TextEdit"
	h := newTestDarwinHandler(run)

	// Already at the system default: succeed without a mutation.
	res, err := h.RemoveDefault(context.Background(), "md", false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "no custom default")
	assert.Empty(t, run.mutationCalls())
}

func TestDarwinRemoveDefaultDryRun(t *testing.T) {
	run := newFakeRunner()
	run.paths["duti"] = "/usr/local/bin/duti"
	run.responses["/usr/local/bin/duti -x md"] = "Code\n/Applications/Code.app\ncom.microsoft.VSCode"
	h := newTestDarwinHandler(run)

	res, err := h.RemoveDefault(context.Background(), "md", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "would reset")
	assert.Empty(t, run.mutationCalls())
}
