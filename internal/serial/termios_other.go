//go:build !linux

package serial

import "os"

func openDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// makeRaw leaves terminal settings untouched outside Linux.
func makeRaw(*os.File, int) (func() error, bool, error) {
	return nil, false, nil
}
