// Package framecodec implements the text framing used to stream raw
// grayscale frames over a serial console.
//
// A frame on the wire is a begin marker line, one standard base64 line per
// Stride bytes of pixel data in ascending offset order, and an end marker
// line:
//
//	-----BEGIN FRAME-----
//	<base64 of bytes 0..95>
//	<base64 of bytes 96..191>
//	...
//	-----END FRAME-----
//
// There is no length, checksum or sequence number. Receivers recover frame
// boundaries by matching marker lines as whole lines and skip anything
// between frames, such as memory diagnostics printed on the same link.
package framecodec
