package main

import (
	"fmt"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newKeygenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing key pair",
		Long: "Generate a signing key pair. The private key is written encrypted\n" +
			"with the passphrase, the public key as base64 PKIX.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alg, err := keys.ParseAlgorithm(v.GetString("algorithm"))
			if err != nil {
				return err
			}

			pass, err := passphrase(v, "Private key passphrase: ")
			if err != nil {
				return err
			}

			kp, err := keys.Generate(alg, v.GetInt("size"))
			if err != nil {
				return err
			}
			defer kp.Close()

			private, err := kp.ToEncryptedPrivateKeyString(pass)
			if err != nil {
				return err
			}

			public, err := kp.ToPublicKeyString()
			if err != nil {
				return err
			}

			if err := afero.WriteFile(fs, v.GetString("private-out"), []byte(private+"\n"), 0o600); err != nil {
				return err
			}

			if err := afero.WriteFile(fs, v.GetString("public-out"), []byte(public+"\n"), 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s key pair\n%s\n", alg, public)

			return nil
		},
	}

	cmd.Flags().String("algorithm", string(keys.ECDSA), "key algorithm: ecdsa, rsa or ed25519")
	cmd.Flags().Int("size", 0, "key size in bits, 0 for the algorithm default")
	cmd.Flags().String("private-out", "license.key", "encrypted private key output file")
	cmd.Flags().String("public-out", "license.pub", "public key output file")
	cmd.Flags().String("passphrase", "", "private key passphrase")

	return cmd
}
