package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh/terminal"
)

var fs = afero.NewOsFs()

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(cn.CLIEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "licensectl",
		Short:         "Issue and verify offline signed licenses",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	root.AddCommand(
		newKeygenCmd(v),
		newSignCmd(v),
		newVerifyCmd(v),
		newInspectCmd(),
		newTokenCmd(v),
		newServeCmd(v),
	)

	return root
}

// passphrase returns the configured passphrase or prompts for it on a terminal.
func passphrase(v *viper.Viper, prompt string) (string, error) {
	if p := v.GetString("passphrase"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !terminal.IsTerminal(fd) {
		return "", fmt.Errorf("a passphrase is required: use --passphrase or %s_PASSPHRASE", cn.CLIEnvPrefix)
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(b), nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}

	return t.UTC(), nil
}

// publicKey resolves the verification key from --public-key or --public-key-file.
func publicKey(v *viper.Viper) (string, error) {
	if k := strings.TrimSpace(v.GetString("public-key")); k != "" {
		return k, nil
	}

	b, err := afero.ReadFile(fs, v.GetString("public-key-file"))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}
