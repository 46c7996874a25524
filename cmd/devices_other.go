//go:build !linux

package cmd

import "errors"

func listDevices() ([]device, error) {
	return nil, errors.New("device listing requires linux")
}
