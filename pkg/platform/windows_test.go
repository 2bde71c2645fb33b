package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is an in-memory HKCU stand-in.
type fakeRegistry struct {
	values   map[string]string
	deleted  []string
	writeErr error
	readErr  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{values: make(map[string]string)}
}

func (f *fakeRegistry) ReadDefault(path string) (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.values[path], nil
}

func (f *fakeRegistry) WriteDefault(path, value string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.values[path] = value
	return nil
}

func (f *fakeRegistry) DeleteTree(path string) error {
	f.deleted = append(f.deleted, path)
	for k := range f.values {
		if k == path || len(k) > len(path) && k[:len(path)+1] == path+`\` {
			delete(f.values, k)
		}
	}
	return nil
}

func newTestWindowsHandler(t *testing.T, reg registryAPI) *WindowsHandler {
	t.Helper()
	h, err := newWindowsHandler(Options{Registry: reg})
	require.NoError(t, err)
	return h
}

func writeExe(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0755))
	return path
}

func TestWindowsVerifyApplicationExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "notepadx.exe")
	h := newTestWindowsHandler(t, newFakeRegistry())

	info, err := h.VerifyApplication(context.Background(), exe)
	require.NoError(t, err)
	assert.Equal(t, exe, info.ExecutablePath)
	assert.Equal(t, "notepadx", info.Name)
}

func TestWindowsVerifyApplicationDirectory(t *testing.T) {
	dir := t.TempDir()
	writeExe(t, dir, "editor.exe")
	h := newTestWindowsHandler(t, newFakeRegistry())

	// The first executable found in a directory wins.
	info, err := h.VerifyApplication(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "editor.exe"), info.ExecutablePath)
	assert.Equal(t, "editor", info.Name)
}

func TestWindowsVerifyApplicationDirectoryWithoutExe(t *testing.T) {
	dir := t.TempDir()
	h := newTestWindowsHandler(t, newFakeRegistry())

	// Missing metadata degrades to empty fields, not an error.
	info, err := h.VerifyApplication(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, info.ExecutablePath)
}

func TestWindowsVerifyApplicationNotFound(t *testing.T) {
	h := newTestWindowsHandler(t, newFakeRegistry())

	_, err := h.VerifyApplication(context.Background(), filepath.Join(t.TempDir(), "missing.exe"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidApplication, errors.CodeOf(err))
}

func TestWindowsSetDefault(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	reg.values[`Software\Classes\.md`] = "SomeOther.md"
	h := newTestWindowsHandler(t, reg)

	res, err := h.SetDefault(context.Background(), ".md", exe, false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "SomeOther.md", res.PreviousDefault)

	assert.Equal(t, "dibs.md", reg.values[`Software\Classes\.md`])
	assert.Equal(t, fmt.Sprintf(`"%s" "%%1"`, exe),
		reg.values[`Software\Classes\dibs.md\shell\open\command`])
	assert.Equal(t, "editor", reg.values[`Software\Classes\dibs.md`])
}

func TestWindowsSetDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	h := newTestWindowsHandler(t, reg)

	_, err := h.SetDefault(context.Background(), "md", exe, false)
	require.NoError(t, err)

	got, err := h.GetCurrentDefault(context.Background(), "md")
	require.NoError(t, err)
	assert.Equal(t, exe, got)
}

func TestWindowsSetDefaultDryRun(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	h := newTestWindowsHandler(t, reg)

	res, err := h.SetDefault(context.Background(), "md", exe, true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "would register")
	assert.Empty(t, reg.values, "dry run must not touch the registry")
}

func TestWindowsSetDefaultNoExecutable(t *testing.T) {
	dir := t.TempDir()
	h := newTestWindowsHandler(t, newFakeRegistry())

	res, err := h.SetDefault(context.Background(), "md", dir, false)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, errors.ErrMetadataUnresolvable, errors.CodeOf(err))
}

func TestWindowsSetDefaultNotAnExe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))
	h := newTestWindowsHandler(t, newFakeRegistry())

	res, err := h.SetDefault(context.Background(), "md", path, false)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, errors.ErrInvalidApplication, errors.CodeOf(err))
}

func TestWindowsSetDefaultAccessDenied(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	reg.writeErr = fmt.Errorf("Access is denied.")
	h := newTestWindowsHandler(t, reg)

	_, err := h.SetDefault(context.Background(), "md", exe, false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrAccessDenied, errors.CodeOf(err))
	assert.NotEmpty(t, errors.HintOf(err))
}

func TestWindowsRemoveDefault(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	h := newTestWindowsHandler(t, reg)

	_, err := h.SetDefault(context.Background(), "md", exe, false)
	require.NoError(t, err)

	res, err := h.RemoveDefault(context.Background(), "md", false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, exe, res.PreviousDefault)

	assert.Empty(t, reg.values[`Software\Classes\.md`])
	assert.Contains(t, reg.deleted, `Software\Classes\dibs.md`)
}

func TestWindowsRemoveDefaultIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	h := newTestWindowsHandler(t, reg)

	res, err := h.RemoveDefault(context.Background(), "md", false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "nothing to remove")
}

func TestWindowsRemoveDefaultLeavesForeignAssociation(t *testing.T) {
	reg := newFakeRegistry()
	reg.values[`Software\Classes\.md`] = "Wordpad.Document.1"
	h := newTestWindowsHandler(t, reg)

	res, err := h.RemoveDefault(context.Background(), "md", false)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Wordpad.Document.1", reg.values[`Software\Classes\.md`],
		"an association dibs did not create must not be touched")
}

func TestWindowsRemoveDefaultDryRun(t *testing.T) {
	dir := t.TempDir()
	exe := writeExe(t, dir, "editor.exe")
	reg := newFakeRegistry()
	h := newTestWindowsHandler(t, reg)

	_, err := h.SetDefault(context.Background(), "md", exe, false)
	require.NoError(t, err)

	res, err := h.RemoveDefault(context.Background(), "md", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "would remove")
	assert.Equal(t, "dibs.md", reg.values[`Software\Classes\.md`])
}

func TestCommandExecutable(t *testing.T) {
	cases := map[string]string{
		`"C:\Tools\app.exe" "%1"`: `C:\Tools\app.exe`,
		`C:\Tools\app.exe %1`:     `C:\Tools\app.exe`,
		`C:\app.exe`:              `C:\app.exe`,
		`"unterminated`:           "",
	}
	for command, want := range cases {
		assert.Equal(t, want, commandExecutable(command), "command %q", command)
	}
}
