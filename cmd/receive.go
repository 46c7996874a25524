package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/webserialdisplay/internal/display"
	"github.com/smazurov/webserialdisplay/internal/logging"
	"github.com/smazurov/webserialdisplay/internal/serial"
)

// CreateReceiveCmd creates the receive command, the host side of the link.
func CreateReceiveCmd() *cobra.Command {
	var (
		input     string
		baud      int
		outputDir string
		format    string
		maxFrames uint64
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Decode frames from a serial link and save them as images",
		Long: `Reads the framed base64 stream produced by the device from a serial port,
file or stdin, and writes every complete frame to the output directory.
Diagnostic lines between frames are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.GetLogger("display")

			src, closeSrc, err := openInput(input, baud)
			if err != nil {
				return err
			}
			defer closeSrc()

			saver, err := display.NewSaver(outputDir, format)
			if err != nil {
				return err
			}

			receiver := display.NewReceiver(src, logger)
			stats, err := receiver.Run(cmd.Context(), maxFrames, func(seq uint64, luma []byte, size int) error {
				path, saveErr := saver.Save(seq, luma, size)
				if saveErr != nil {
					return saveErr
				}
				logger.Info("Frame saved", "frame", seq, "size", size, "path", path)
				return nil
			})

			saved, dropped := saver.Stats()
			logger.Info("Receive finished",
				"frames", stats.Frames,
				"saved", saved,
				"dropped", dropped,
				"malformed", stats.Malformed,
				"discarded", stats.Stream.Discarded,
				"stray_lines", stats.Stream.StrayLines,
				"last_free_bytes", stats.LastFreeBytes)
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Serial device or file to read, - for stdin")
	cmd.Flags().IntVar(&baud, "baud", serial.DefaultBaudRate, "Baud rate when input is a TTY")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "frames", "Directory for decoded frames")
	cmd.Flags().StringVarP(&format, "format", "f", display.FormatPNG, "Image format (png, pgm)")
	cmd.Flags().Uint64VarP(&maxFrames, "count", "n", 0, "Stop after this many frames, 0 for no limit")
	return cmd
}

func openInput(input string, baud int) (io.Reader, func(), error) {
	if input == "-" || input == "stdin" {
		return os.Stdin, func() {}, nil
	}
	port, err := serial.Open(serial.Config{Device: input, BaudRate: baud})
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return port, func() { _ = port.Close() }, nil
}
