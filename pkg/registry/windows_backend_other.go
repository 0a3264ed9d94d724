//go:build !windows

package registry

import (
	"errors"
	"runtime"
)

func openWindowsBackend() (Backend, error) {
	return nil, errors.New("the windows registry backend is not available on " + runtime.GOOS)
}
