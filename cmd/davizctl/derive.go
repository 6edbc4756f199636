package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"daviz/pkg/address"
)

type derivedInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	Program string `json:"program" yaml:"program"`
	Address string `json:"address" yaml:"address"`
	Bump    uint8  `json:"bump" yaml:"bump"`
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive registry record addresses",
}

var deriveFrameworkCmd = &cobra.Command{
	Use:   "framework [authority] [framework-id]",
	Short: "Derive a trust framework address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveOwned(cmd, "framework", args, address.Deriver.Framework)
	},
}

var deriveAssetCmd = &cobra.Command{
	Use:   "asset [owner] [asset-id]",
	Short: "Derive an asset profile address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveOwned(cmd, "asset", args, address.Deriver.AssetProfile)
	},
}

var deriveTrustCmd = &cobra.Command{
	Use:   "trust [framework] [issuer] [asset]",
	Short: "Derive a trust record address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deriver()
		if err != nil {
			return err
		}
		addrs := make([]address.Address, len(args))
		for i, a := range args {
			if addrs[i], err = address.Parse(a); err != nil {
				return fmt.Errorf("argument %d: %w", i+1, err)
			}
		}
		derived, err := d.TrustRecord(addrs[0], addrs[1], addrs[2])
		if err != nil {
			return err
		}
		return printDerived(cmd.OutOrStdout(), d, "trust", derived)
	},
}

func deriveOwned(cmd *cobra.Command, kind string, args []string, fn func(address.Deriver, address.Address, uint64) (address.Derived, error)) error {
	d, err := deriver()
	if err != nil {
		return err
	}
	owner, err := address.Parse(args[0])
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be an unsigned integer: %w", err)
	}
	derived, err := fn(d, owner, id)
	if err != nil {
		return err
	}
	return printDerived(cmd.OutOrStdout(), d, kind, derived)
}

func printDerived(w io.Writer, d address.Deriver, kind string, derived address.Derived) error {
	info := derivedInfo{Kind: kind, Program: d.Program().String(), Address: derived.Address.String(), Bump: derived.Bump}
	return render(w, info, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s (bump %d)\n", color.CyanString(kind), info.Address, info.Bump)
	})
}

func init() {
	deriveCmd.AddCommand(deriveFrameworkCmd, deriveAssetCmd, deriveTrustCmd)
	rootCmd.AddCommand(deriveCmd)
}
