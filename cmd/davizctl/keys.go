package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"daviz/pkg/address"
)

var keyOut string

type keyInfo struct {
	Address string `json:"address" yaml:"address"`
	KeyFile string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 signer key",
	Long:  `Generate a signer key pair. The 32-byte seed is written base58 encoded to --out; the signer address is printed.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		signer, err := address.FromPublicKey(pub)
		if err != nil {
			return err
		}
		if keyOut != "" {
			if err := writeKey(keyOut, priv); err != nil {
				return err
			}
		}
		info := keyInfo{Address: signer.String(), KeyFile: keyOut}
		return render(cmd.OutOrStdout(), info, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s\n", color.GreenString("signer"), info.Address)
			if keyOut == "" {
				color.New(color.FgYellow).Fprintln(w, "seed (keep secret):", base58.Encode(priv.Seed()))
			}
		})
	},
}

func writeKey(path string, priv ed25519.PrivateKey) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, base58.Encode(priv.Seed()))
	return err
}

func readKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return parseSeed(strings.TrimSpace(string(raw)))
}

func parseSeed(encoded string) (ed25519.PrivateKey, error) {
	seed, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("key file must hold a 32-byte ed25519 seed")
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func init() {
	keygenCmd.Flags().StringVar(&keyOut, "out", "", "File to write the seed to (refuses to overwrite)")
	rootCmd.AddCommand(keygenCmd)
}
