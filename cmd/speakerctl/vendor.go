package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/console"
)

type vendorView struct {
	UserID      string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	DeviceCount int    `json:"device_count" yaml:"device_count"`
	LoggedIn    bool   `json:"logged_in" yaml:"logged_in"`
}

func vendorCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Manage the vendor cloud account used by the gateway",
	}
	cmd.AddCommand(vendorLoginCmd(c), vendorLogoutCmd(c), vendorStatusCmd(c))
	return cmd
}

func vendorLoginCmd(c *cli) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Connect the vendor account",
		Long: `Connect the vendor account.

Without --username the gateway uses its configured default account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username != "" && password == "" {
				var err error
				p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
				if password, err = p.secret("Vendor password"); err != nil {
					return err
				}
			}

			if _, err := c.con.VendorLogin(cmd.Context(), username, password); err != nil {
				var resp *apiclient.ResponseError
				if errors.As(err, &resp) && resp.Code == "vendor_login_failed" {
					return fmt.Errorf("vendor login failed: %s", resp.Detail)
				}
				return err
			}

			st := c.con.Vendor()
			if err := done(cmd.OutOrStdout(), c.output, fmt.Sprintf("vendor account connected, %d devices", st.DeviceCount)); err != nil {
				return err
			}
			return c.printVendor(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "vendor account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "vendor account password (prompted when --username is set)")
	return cmd
}

func vendorLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Disconnect the vendor account, keeping the gateway session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.con.VendorLogout(cmd.Context()); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), c.output, "vendor account disconnected")
		},
	}
}

func vendorStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the vendor account is connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.con.Sync(cmd.Context()); err != nil {
				return err
			}
			return c.printVendor(cmd.OutOrStdout())
		},
	}
}

func (c *cli) printVendor(w io.Writer) error {
	st := c.con.Vendor()
	v := vendorView{UserID: st.UserID, DeviceCount: st.DeviceCount, LoggedIn: st.LoggedIn}
	return render(w, c.output, v, func(w io.Writer) error {
		if !v.LoggedIn {
			_, err := fmt.Fprintln(w, badge(console.SystemOnly))
			return err
		}
		fmt.Fprintln(w, badge(console.FullyConnected))
		if v.UserID != "" {
			fmt.Fprintln(w, "  account:", v.UserID)
		}
		_, err := fmt.Fprintln(w, "  devices:", v.DeviceCount)
		return err
	})
}
