//go:build !linux && !windows

package discovery

import (
	"context"
	"fmt"
	"runtime"
)

type unsupportedEnumerator struct{}

func newEnumerator(_ *Options) Enumerator {
	return unsupportedEnumerator{}
}

func (unsupportedEnumerator) Targets(_ context.Context) ([]Target, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s", ErrUnavailable, runtime.GOOS)
}

func (unsupportedEnumerator) AudioDevices(_ context.Context) ([]AudioDevice, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s", ErrUnavailable, runtime.GOOS)
}
