package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSignCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Create and sign a license document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := licenseFromFlags(v)
			if err != nil {
				return err
			}

			encrypted, err := afero.ReadFile(fs, v.GetString("key"))
			if err != nil {
				return err
			}

			pass, err := passphrase(v, "Private key passphrase: ")
			if err != nil {
				return err
			}

			signed, err := signing.CreateAndSign(l, strings.TrimSpace(string(encrypted)), pass)
			if err != nil {
				return err
			}

			out := v.GetString("out")

			if v.GetBool("json") {
				b, err := document.ToJSON(signed)
				if err != nil {
					return err
				}

				if err := afero.WriteFile(fs, out, b, 0o644); err != nil {
					return err
				}
			} else if err := document.SaveFile(fs, out, signed); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed license %s written to %s\n", signed.ID, out)

			return nil
		},
	}

	cmd.Flags().String("key", "license.key", "encrypted private key file")
	cmd.Flags().String("passphrase", "", "private key passphrase")
	cmd.Flags().String("id", "", "license identifier, random when empty")
	cmd.Flags().String("type", string(model.Standard), "license type: Trial, Standard, Enterprise or Free")
	cmd.Flags().String("expires", "", "expiration date (YYYY-MM-DD or RFC 3339), never when empty")
	cmd.Flags().Int("quantity", 1, "maximum utilization")
	cmd.Flags().String("name", "", "customer name")
	cmd.Flags().String("email", "", "customer email")
	cmd.Flags().String("company", "", "customer company")
	cmd.Flags().StringArray("feature", nil, "product feature as name=value, repeatable")
	cmd.Flags().StringArray("attribute", nil, "additional attribute as name=value, repeatable")
	cmd.Flags().String("out", "license.xml", "output file")
	cmd.Flags().Bool("json", false, "write the JSON projection instead of XML")

	return cmd
}

func licenseFromFlags(v *viper.Viper) (*model.License, error) {
	if strings.TrimSpace(v.GetString("name")) == "" {
		return nil, errors.New("a customer name is required: use --name")
	}

	lt, err := model.LookupLicenseType(v.GetString("type"))
	if err != nil {
		return nil, err
	}

	b := model.NewLicenseBuilder().
		As(lt).
		WithMaximumUtilization(v.GetInt("quantity")).
		LicensedTo(v.GetString("name"), v.GetString("email"), func(c *model.Customer) {
			c.Company = v.GetString("company")
		}).
		WithProductFeatures(attributes(v.GetStringSlice("feature"))...).
		WithAdditionalAttributes(attributes(v.GetStringSlice("attribute"))...)

	if id := v.GetString("id"); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid license id %q: %w", id, err)
		}

		b = b.WithUniqueIdentifier(parsed)
	} else {
		b = b.WithUniqueIdentifier(uuid.New())
	}

	if exp := v.GetString("expires"); exp != "" {
		t, err := parseDate(exp)
		if err != nil {
			return nil, err
		}

		b = b.ExpiresAt(t)
	}

	return b.Build(), nil
}

func attributes(entries []string) []model.Attribute {
	names, values := pkg.ParseKeyValuePairs(entries)

	out := make([]model.Attribute, 0, len(names))
	for _, n := range names {
		out = append(out, model.Attribute{Key: n, Value: values[n]})
	}

	return out
}
