package main

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alexandria/internal/auth"
	"alexandria/internal/config"
)

func newHashPasswordCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Hash a ui password; reads stdin without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(args)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if save {
				path, err := config.GlobalPath()
				if err != nil {
					return err
				}
				if err := config.SetKey(path, "ui.password_hash", hash); err != nil {
					return err
				}
			}
			return writePlain("%s\n", hash)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "also store the hash as ui.password_hash")
	return cmd
}

func readPassword(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password is required on stdin or as an argument")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
