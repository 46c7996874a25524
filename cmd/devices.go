package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// device is one row of the devices listing.
type device struct {
	Path      string
	Name      string
	ID        string
	CanRead   bool
	Grayscale bool
}

// CreateDevicesCmd creates the devices command listing usable cameras.
func CreateDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List V4L2 capture devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := listDevices()
			if err != nil {
				return err
			}
			return printDevices(cmd.OutOrStdout(), devices)
		},
	}
}

func printDevices(w io.Writer, devices []device) error {
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, "No V4L2 capture devices found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tNAME\tREAD I/O\tGRAYSCALE\tID")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Path, d.Name, yesNo(d.CanRead), yesNo(d.Grayscale), d.ID)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
