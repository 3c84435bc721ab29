package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"p7mx/internal/openssl"
	"p7mx/internal/security"
)

// newCheckCommand reports availability of the external tools. Informational
// only for the optional ones; a missing extraction tool fails the command.
func newCheckCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the external tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := openssl.NewClient(app.cfg.OpenSSLBinary, app.cfg.VerifyChain)
			if err := client.Check(); err != nil {
				return err
			}

			if version, err := client.Version(); err != nil {
				fmt.Printf("%s: found, but version query failed: %v\n", app.cfg.OpenSSLBinary, err)
			} else {
				fmt.Printf("%s: %s\n", app.cfg.OpenSSLBinary, version)
			}

			if app.cfg.Scan.Enabled {
				if _, err := security.NewScanner(app.cfg.Scan.ClamdAddress); err != nil {
					fmt.Printf("clamd: unavailable (%v)\n", err)
				} else {
					fmt.Printf("clamd: reachable at %s\n", app.cfg.Scan.ClamdAddress)
				}
			}
			return nil
		},
	}
}
