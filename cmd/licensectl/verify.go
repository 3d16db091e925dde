package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/LerianStudio/lib-offline-license-go/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errLicenseInvalid = errors.New("license is not valid")

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify LICENSE_FILE",
		Short: "Verify a license document against a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := publicKey(v)
			if err != nil {
				return err
			}

			pub, err := keys.FromPublicKeyString(encoded)
			if err != nil {
				return err
			}

			l, err := document.LoadFile(fs, args[0])
			if err != nil {
				return err
			}

			verdict := validation.Assess(l, func(l *model.License) (bool, error) {
				return signing.Verify(l, pub)
			}, time.Now(), v.GetStringSlice("feature")...)

			out := cmd.OutOrStdout()

			if verdict.Valid {
				fmt.Fprintf(out, "License %s is valid [type: %s | expires in %d days]\n",
					verdict.LicenseID, verdict.Type, verdict.ExpiryDaysLeft)

				return nil
			}

			fmt.Fprintf(out, "License %s is NOT valid:\n", verdict.LicenseID)

			for _, f := range verdict.Errors {
				fmt.Fprintf(out, "  [%s] %s\n", f.Code, f.Message)

				if f.HowToResolve != "" {
					fmt.Fprintf(out, "      %s\n", f.HowToResolve)
				}
			}

			return errLicenseInvalid
		},
	}

	cmd.Flags().String("public-key", "", "base64 PKIX public key")
	cmd.Flags().String("public-key-file", "license.pub", "public key file")
	cmd.Flags().StringSlice("feature", nil, "required product features")

	return cmd
}
