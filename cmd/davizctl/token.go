package main

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "daviz/internal/jwt_token"
)

var (
	tokenKeyFile  string
	tokenAudience string
	tokenTTL      time.Duration
)

type tokenInfo struct {
	Token     string    `json:"token" yaml:"token"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a signer key",
	Long:  `Issue a short-lived EdDSA token signed by the key in --key (or DAVIZ_SIGNER_KEY). The token proves the caller holds the signer key.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := loadSigner()
		if err != nil {
			return err
		}
		now := time.Now()
		token, err := jwttoken.Issue(priv, tokenAudience, now, tokenTTL)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		slog.Debug("issued token", "audience", tokenAudience, "ttl", tokenTTL)
		info := tokenInfo{Token: token, ExpiresAt: now.Add(tokenTTL).UTC()}
		return render(cmd.OutOrStdout(), info, func(w io.Writer) {
			fmt.Fprintln(w, info.Token)
		})
	},
}

func loadSigner() (ed25519.PrivateKey, error) {
	if tokenKeyFile != "" {
		return readKey(tokenKeyFile)
	}
	if seed := os.Getenv("DAVIZ_SIGNER_KEY"); seed != "" {
		return parseSeed(seed)
	}
	return nil, errors.New("no signer key: pass --key or set DAVIZ_SIGNER_KEY")
}

func init() {
	tokenCmd.Flags().StringVar(&tokenKeyFile, "key", "", "Seed file written by keygen")
	tokenCmd.Flags().StringVar(&tokenAudience, "audience", jwttoken.DefaultAudience, "Token audience")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 15*time.Minute, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
