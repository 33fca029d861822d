package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/console"
)

type statusView struct {
	Status         string `json:"status" yaml:"status"`
	Server         string `json:"server" yaml:"server"`
	VendorUser     string `json:"vendor_user,omitempty" yaml:"vendor_user,omitempty"`
	SelectedDevice string `json:"selected_device,omitempty" yaml:"selected_device,omitempty"`
	DeviceCount    int    `json:"device_count" yaml:"device_count"`
	VendorLoggedIn bool   `json:"vendor_logged_in" yaml:"vendor_logged_in"`
}

func (c *cli) status() statusView {
	v := statusView{
		Status: c.con.Status().String(),
		Server: c.server,
	}
	if st := c.con.Vendor(); st.LoggedIn {
		v.VendorLoggedIn = true
		v.VendorUser = st.UserID
		v.DeviceCount = st.DeviceCount
	}
	if dev, ok := c.con.Directory().Selected(); ok {
		v.SelectedDevice = dev.DisplayName()
	}
	return v
}

func (c *cli) printStatus(w io.Writer) error {
	v := c.status()
	return render(w, c.output, v, func(w io.Writer) error {
		fmt.Fprintln(w, headerStyle.Render("speakerhub"), mutedStyle.Render(v.Server))
		fmt.Fprintln(w, "  session:", badge(c.con.Status()))
		if v.VendorLoggedIn {
			user := v.VendorUser
			if user == "" {
				user = "-"
			}
			fmt.Fprintf(w, "  vendor:  %s, %d devices\n", user, v.DeviceCount)
		}
		if v.SelectedDevice != "" {
			fmt.Fprintln(w, "  device: ", v.SelectedDevice)
		}
		return nil
	})
}

func loginCmd(c *cli) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			var err error
			if username == "" {
				if username, err = p.line("Username"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.secret("Password"); err != nil {
					return err
				}
			}

			if _, err := c.con.Login(cmd.Context(), username, password); err != nil {
				if errors.Is(err, apiclient.ErrUnauthorized) {
					return errors.New("invalid username or password")
				}
				return err
			}
			if err := done(cmd.OutOrStdout(), c.output, "logged in as "+username); err != nil {
				return err
			}
			return c.printStatus(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "system username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "system password (prompted when omitted)")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Disconnect the vendor account and forget the gateway session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.con.Logout(cmd.Context()); err != nil {
				return err
			}
			return done(cmd.OutOrStdout(), c.output, "logged out")
		},
	}
}

func statusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if c.con.Status() != console.Unauthenticated {
				err := c.con.Sync(ctx)
				switch {
				case errors.Is(err, apiclient.ErrAuthExpired):
					return err
				case err != nil:
					c.log.WarnContext(ctx, "could not refresh status", slog.Any("error", err))
				}
			}
			return c.printStatus(cmd.OutOrStdout())
		},
	}
}
