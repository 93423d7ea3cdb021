package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/dbus"
)

// controlCommand builds a subcommand that sends cmd to the running drawer.
func controlCommand(cmd dbus.Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   strings.ToLower(string(cmd)),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := dbus.Send(cmd); err != nil {
				return fmt.Errorf("is the drawer running? %w", err)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(
		controlCommand(dbus.CommandShow, "Show the running drawer"),
		controlCommand(dbus.CommandHide, "Hide the running drawer"),
		controlCommand(dbus.CommandToggle, "Toggle the running drawer"),
		controlCommand(dbus.CommandRescan, "Rescan the application directories"),
	)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the drawer is running and visible",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		visible, err := dbus.Visible()
		if err != nil {
			fmt.Fprintln(c.OutOrStdout(), "not running")
			return nil
		}
		state := "hidden"
		if visible {
			state = "visible"
		}
		fmt.Fprintln(c.OutOrStdout(), "running,", state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
