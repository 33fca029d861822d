package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerhub/pkg/console"
	"github.com/dmitrymomot/speakerhub/pkg/devices"
)

type deviceView struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Alias    string `json:"alias,omitempty" yaml:"alias,omitempty"`
	MiotDID  string `json:"miot_did,omitempty" yaml:"miot_did,omitempty"`
	Hardware string `json:"hardware,omitempty" yaml:"hardware,omitempty"`
	Selected bool   `json:"selected" yaml:"selected"`
}

// fetchDevices loads the device list from the gateway.
func (c *cli) fetchDevices(ctx context.Context) ([]devices.Device, error) {
	if !c.con.IsAuthenticated() {
		return nil, console.ErrNotAuthenticated
	}
	return c.con.Directory().Fetch(ctx)
}

func devicesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "devices",
		Aliases: []string{"ls"},
		Short:   "List the speakers of the vendor account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.fetchDevices(cmd.Context())
			if err != nil {
				return err
			}

			var selected string
			if dev, ok := c.con.Directory().Selected(); ok {
				selected = dev.ID
			}
			views := make([]deviceView, 0, len(list))
			for _, d := range list {
				views = append(views, deviceView{
					ID:       d.ID,
					Name:     d.Name,
					Alias:    d.Alias,
					MiotDID:  d.MiotDID,
					Hardware: d.Hardware,
					Selected: d.ID == selected,
				})
			}

			return render(cmd.OutOrStdout(), c.output, views, func(w io.Writer) error {
				return deviceTable(w, views)
			})
		},
	}
}

func deviceTable(w io.Writer, views []deviceView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no devices"))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tNAME\tALIAS\tDID\tHARDWARE")
	for _, v := range views {
		mark := " "
		if v.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, v.ID, dash(v.Name), dash(v.Alias), dash(v.MiotDID), dash(v.Hardware))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func selectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "select <device>",
		Short: "Choose the device used when --device is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.fetchDevices(ctx); err != nil {
				return err
			}

			dir := c.con.Directory()
			dev, ok := dir.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no device matches %q", args[0])
			}
			if _, err := dir.Select(ctx, dev.ID); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), c.output, fmt.Sprintf("selected %s (%s)", dev.DisplayName(), dev.ID))
		},
	}
}
