//go:build windows

package platform

import (
	"syscall"

	"golang.org/x/sys/windows/registry"
)

// systemRegistry implements registryAPI against HKEY_CURRENT_USER.
type systemRegistry struct{}

func newSystemRegistry() (registryAPI, error) {
	return &systemRegistry{}, nil
}

func (r *systemRegistry) ReadDefault(path string) (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return "", nil
		}
		return "", err
	}
	defer key.Close()

	value, _, err := key.GetStringValue("")
	if err != nil {
		if err == registry.ErrNotExist {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *systemRegistry) WriteDefault(path, value string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetStringValue("", value); err != nil {
		return err
	}
	notifyAssocChanged()
	return nil
}

func (r *systemRegistry) DeleteTree(path string) error {
	if err := deleteKeyRecursive(path); err != nil {
		return err
	}
	notifyAssocChanged()
	return nil
}

func deleteKeyRecursive(path string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, path,
		registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil
		}
		return err
	}

	names, err := key.ReadSubKeyNames(-1)
	key.Close()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := deleteKeyRecursive(path + `\` + name); err != nil {
			return err
		}
	}

	err = registry.DeleteKey(registry.CURRENT_USER, path)
	if err == registry.ErrNotExist {
		return nil
	}
	return err
}

var (
	shell32            = syscall.NewLazyDLL("shell32.dll")
	procSHChangeNotify = shell32.NewProc("SHChangeNotify")
)

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

// notifyAssocChanged tells the shell the association set changed so
// Explorer refreshes icons and open-with menus without a logoff.
func notifyAssocChanged() {
	_, _, _ = procSHChangeNotify.Call(
		uintptr(shcneAssocChanged), uintptr(shcnfIDList), 0, 0)
}
