package cmd

import (
	"fmt"

	"github.com/connesc/appticket"
	"github.com/spf13/cobra"
)

type ticketFile struct {
	File   *string
	Signed bool
	*appticket.Info
}

func newDecryptCmd(a *app, output *outputFlags) *cobra.Command {
	decryptCmd := &cobra.Command{
		Use:   "decrypt [file...]",
		Short: "Decrypt and decode tickets",
		Long: "Decrypt and decode tickets given as arguments, or stdin if none is given.\n" +
			"Tickets may be binary, hex or base64 encoded. Unless --input is given, text made\n" +
			"only of hex digits is read as hex, other text as base64, and anything else as binary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier, err := a.verifier()
			if err != nil {
				return err
			}

			return a.processFiles(output, args, func(filename *string, data []byte) (any, bool) {
				ticket, err := verifier.Verify(data)
				if err != nil {
					fmt.Fprintf(a.stderr, "Invalid ticket: %v\n", err)
					return nil, false
				}
				return ticketFile{
					File:   filename,
					Signed: verifier.IsSigned(ticket),
					Info:   ticket.Info(),
				}, true
			})
		},
	}
	decryptCmd.Flags().AddFlagSet(output.flags)
	return decryptCmd
}
