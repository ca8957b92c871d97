package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type checkResult struct {
	File       *string
	AppID      uint32
	SteamID    uint64 `json:",omitempty"`
	Authorized bool
	Reason     string `json:",omitempty"`
}

func newCheckCmd(a *app, output *outputFlags) *cobra.Command {
	var (
		appID            uint32
		requireSignature bool
	)

	checkCmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check that tickets grant an app",
		Long: "Check that tickets given as arguments, or stdin if none is given, are valid and\n" +
			"grant the app to their holder. Exits with status 3 if any ticket is refused.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("app") {
				a.cfg.AppID = appID
			}
			if cmd.Flags().Changed("require-signature") {
				a.cfg.RequireSignature = requireSignature
			}
			if a.cfg.AppID == 0 {
				return errors.New("no app configured, use --app or APPTICKET_APP_ID")
			}

			verifier, err := a.verifier()
			if err != nil {
				return err
			}

			return a.processFiles(output, args, func(filename *string, data []byte) (any, bool) {
				result := checkResult{File: filename, AppID: a.cfg.AppID}
				ticket, err := verifier.Authorize(data, a.cfg.AppID, time.Now())
				if err != nil {
					fmt.Fprintf(a.stderr, "Refused ticket: %v\n", err)
					result.Reason = err.Error()
					return result, false
				}
				result.SteamID = ticket.SteamID()
				result.Authorized = true
				return result, true
			})
		},
	}

	flags := checkCmd.Flags()
	flags.Uint32VarP(&appID, "app", "a", 0, "app the tickets must grant, overrides APPTICKET_APP_ID")
	flags.BoolVar(&requireSignature, "require-signature", false, "refuse tickets not signed by the public key")
	flags.AddFlagSet(output.flags)
	return checkCmd
}
