package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/token"
	"github.com/LerianStudio/lib-offline-license-go/validation"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and verify compact RSA license tokens",
	}

	cmd.AddCommand(newTokenKeygenCmd(v), newTokenSignCmd(v), newTokenVerifyCmd(v))

	return cmd
}

func newTokenKeygenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate RSA signing parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := keys.NewSigningParameters(v.GetInt("bits"))
			if err != nil {
				return err
			}
			defer params.Close()

			out := v.GetString("params")
			if err := params.ExportContext(cmd.Context(), fs, out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "RSA-%d signing parameters written to %s\n", params.KeySize(), out)

			return nil
		},
	}

	cmd.Flags().Int("bits", 2048, "RSA key size")
	cmd.Flags().String("params", "signing.json", "signing parameters file")

	return cmd
}

func newTokenSignCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Issue a signed license token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := keys.ImportContext(cmd.Context(), fs, v.GetString("params"))
			if err != nil {
				return err
			}
			defer params.Close()

			data := json.RawMessage(v.GetString("data"))
			if !json.Valid(data) {
				return fmt.Errorf("--data must be a JSON document")
			}

			lt, err := model.LookupLicenseType(v.GetString("type"))
			if err != nil {
				return err
			}

			f := token.NewFactory(data).WithType(lt).WithName(v.GetString("name"))

			if s := v.GetString("activation"); s != "" {
				t, err := parseDate(s)
				if err != nil {
					return err
				}

				f = f.WithActivationDate(t)
			}

			if s := v.GetString("expiration"); s != "" {
				t, err := parseDate(s)
				if err != nil {
					return err
				}

				f = f.WithExpirationDate(t)
			}

			sl, err := f.CreateAndSign(params)
			if err != nil {
				return err
			}

			if out := v.GetString("out"); out != "" {
				return afero.WriteFile(fs, out, []byte(sl.LicenseData+"\n"), 0o644)
			}

			fmt.Fprintln(cmd.OutOrStdout(), sl.LicenseData)

			return nil
		},
	}

	cmd.Flags().String("params", "signing.json", "signing parameters file")
	cmd.Flags().String("name", "", "license name")
	cmd.Flags().String("type", string(model.Standard), "license type")
	cmd.Flags().String("activation", "", "activation date, epoch when empty")
	cmd.Flags().String("expiration", "", "expiration date, never when empty")
	cmd.Flags().String("data", "{}", "application key data as JSON")
	cmd.Flags().String("out", "", "token output file, stdout when empty")

	return cmd
}

func newTokenVerifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify TOKEN_FILE",
		Short: "Verify a license token against trusted signing parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := keys.ImportContext(cmd.Context(), fs, v.GetString("params"))
			if err != nil {
				return err
			}
			defer params.Close()

			raw, err := afero.ReadFile(fs, args[0])
			if err != nil {
				return err
			}

			chain, err := validation.ForToken[json.RawMessage](strings.TrimSpace(string(raw)), params.RSAPublicKey())
			if err != nil {
				return err
			}

			if name := v.GetString("name"); name != "" {
				chain = chain.NameIs(name)
			}

			result := chain.Activation().Expiration().Evaluate()
			key := result.Subject
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Name:       %s\nType:       %s\nActivation: %s\nExpiration: %s\nData:       %s\n",
				key.LicenseName, key.LicenseType,
				key.ActivationDate().Format(time.RFC3339), key.ExpirationDate().Format(time.RFC3339),
				string(key.KeyData))

			if !result.HasErrors() {
				fmt.Fprintln(out, "Token is valid")
				return nil
			}

			for _, f := range result.Errors {
				fmt.Fprintf(out, "  [%s] %s\n", f.Code, f.Message)
			}

			return errLicenseInvalid
		},
	}

	cmd.Flags().String("params", "signing.json", "trusted signing parameters file")
	cmd.Flags().String("name", "", "expected license name")

	return cmd
}
