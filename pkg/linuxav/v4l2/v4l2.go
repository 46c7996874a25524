//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// for device enumeration, format negotiation and read(2) frame capture.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
//
// # Capture
//
// Negotiate a small grayscale format and read frames into a caller buffer:
//
//	dev, err := v4l2.Open("/dev/video0")
//	format, err := dev.SetFormat(96, 96, v4l2.PixFmtGrey)
//	buf := make([]byte, format.SizeImage)
//	if ready, _ := dev.WaitReadable(500); ready {
//	    n, err := dev.Read(buf)
//	}
//
// Drivers that cannot deliver GREY usually offer YUYV; the luma samples are
// every other byte of a YUYV frame.
package v4l2
