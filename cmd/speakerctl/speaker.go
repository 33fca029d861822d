package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
)

type commandView struct {
	Result   any    `json:"result,omitempty" yaml:"result,omitempty"`
	DeviceID string `json:"device_id" yaml:"device_id"`
	Message  string `json:"message" yaml:"message"`
}

type volumeView struct {
	DeviceID string `json:"device_id" yaml:"device_id"`
	Volume   int    `json:"volume" yaml:"volume"`
}

type playbackView struct {
	Status   map[string]any `json:"status" yaml:"status"`
	DeviceID string         `json:"device_id" yaml:"device_id"`
	State    string         `json:"state" yaml:"state"`
	URL      string         `json:"url,omitempty" yaml:"url,omitempty"`
}

func (c *cli) printCommand(w io.Writer, res apiclient.CommandResult, msg string) error {
	v := commandView{Result: res.Result, DeviceID: res.DeviceID, Message: msg}
	return render(w, c.output, v, func(w io.Writer) error {
		return done(w, c.output, fmt.Sprintf("%s %s", msg, mutedStyle.Render("("+res.DeviceID+")")))
	})
}

func playURLCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play-url <url>",
		Short: "Stream a URL on the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.con.PlayURL(cmd.Context(), c.device, args[0])
			if err != nil {
				return err
			}
			return c.printCommand(cmd.OutOrStdout(), res, "playing "+args[0])
		},
	}
}

func playbackCmd(c *cli, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				res apiclient.CommandResult
				err error
				msg string
			)
			switch action {
			case "play":
				res, err = c.con.Play(ctx, c.device)
				msg = "playback resumed"
			case "pause":
				res, err = c.con.Pause(ctx, c.device)
				msg = "playback paused"
			default:
				res, err = c.con.Stop(ctx, c.device)
				msg = "playback stopped"
			}
			if err != nil {
				return err
			}
			return c.printCommand(cmd.OutOrStdout(), res, msg)
		},
	}
}

func playbackStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "playback",
		Short: "Show the player state of the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.con.PlaybackStatus(cmd.Context(), c.device)
			if err != nil {
				return err
			}

			v := playbackView{Status: st.Status, DeviceID: st.DeviceID}
			v.State, v.URL = playerState(st.Status)
			return render(cmd.OutOrStdout(), c.output, v, func(w io.Writer) error {
				fmt.Fprintln(w, headerStyle.Render(v.DeviceID), v.State)
				if v.URL != "" {
					fmt.Fprintln(w, "  url:", v.URL)
				}
				return nil
			})
		},
	}
}

// playerState reads the state and the current url from a player status payload.
func playerState(status map[string]any) (string, string) {
	data, _ := status["data"].(map[string]any)
	info, _ := data["info"].(map[string]any)

	var url string
	if detail, ok := info["play_song_detail"].(map[string]any); ok {
		url, _ = detail["url"].(string)
	}

	code, ok := info["status"].(float64)
	if !ok {
		return "unknown", url
	}
	switch int(code) {
	case 1:
		return "playing", url
	case 2:
		return "paused", url
	default:
		return "stopped", url
	}
}

func volumeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "volume [level]",
		Short: "Show or set the device volume (0-100)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				vol, err := c.con.Volume(ctx, c.device)
				if err != nil {
					return err
				}
				v := volumeView(vol)
				return render(cmd.OutOrStdout(), c.output, v, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %d\n", headerStyle.Render(v.DeviceID), v.Volume)
					return err
				})
			}

			level, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
			if err != nil {
				return fmt.Errorf("volume must be a number between 0 and 100, got %q", args[0])
			}
			res, err := c.con.SetVolume(ctx, c.device, level)
			if err != nil {
				return err
			}
			return c.printCommand(cmd.OutOrStdout(), res, fmt.Sprintf("volume set to %d", level))
		},
	}
}

func sayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "say <text>",
		Aliases: []string{"tts"},
		Short:   "Read text aloud on the device",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res, err := c.con.Speak(cmd.Context(), c.device, text)
			if err != nil {
				return err
			}
			return c.printCommand(cmd.OutOrStdout(), res, "spoken")
		},
	}
}
