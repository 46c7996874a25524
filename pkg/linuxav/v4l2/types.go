//go:build linux

package v4l2

// DeviceInfo contains information about a V4L2 device.
type DeviceInfo struct {
	DevicePath string
	DeviceName string
	DeviceID   string // Stable identifier (from /dev/v4l/by-id/ or synthetic)
	Caps       uint32
}

// CanRead reports whether the device supports read(2) I/O.
func (d DeviceInfo) CanRead() bool {
	return d.Caps&v4l2CapReadWrite != 0
}

// FormatInfo contains information about a supported pixel format.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	Emulated    bool
}

// Format is the capture format the driver accepted.
type Format struct {
	Width        uint32
	Height       uint32
	PixelFormat  uint32
	BytesPerLine uint32
	SizeImage    uint32
}

// Pixel formats used for grayscale capture.
const (
	PixFmtGrey = 0x59455247 // 'GREY'
	PixFmtYUYV = 0x56595559 // 'YUYV'
)

// Control IDs.
const (
	CIDHFlip = 0x00980914 // V4L2_CID_HFLIP
	CIDVFlip = 0x00980915 // V4L2_CID_VFLIP
)

// Capability flags.
const (
	v4l2CapVideoCapture = 0x00000001
	v4l2CapReadWrite    = 0x01000000
	v4l2CapDeviceCaps   = 0x80000000
)

// Format flags.
const (
	v4l2FmtFlagEmulated = 0x0002
)

// Buffer type and field order.
const (
	v4l2BufTypeVideoCapture = 1
	v4l2FieldNone           = 1
)
