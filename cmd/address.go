package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vey/vey-go/pkg/vey"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient("client")
		if err != nil {
			return err
		}
		defer client.Close()

		addr := addressFromFlags(cmd.Flags())
		countryCode, _ := cmd.Flags().GetString("country-code")

		res, err := client.ValidateAddress(cmd.Context(), addr, countryCode)
		if err != nil {
			return err
		}

		zap.L().Info("address validated",
			zap.String("country_code", countryCode),
			zap.Bool("valid", res.Valid),
			zap.Int("errors", len(res.Errors)),
		)
		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), res)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize an address to its canonical form",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient("client")
		if err != nil {
			return err
		}
		defer client.Close()

		addr := addressFromFlags(cmd.Flags())
		countryCode, _ := cmd.Flags().GetString("country-code")

		normalized, err := client.NormalizeAddress(cmd.Context(), addr, countryCode)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), normalized.ToMap())
	},
}

// addressFlags maps flag names to wire keys.
var addressFlags = []struct {
	flag, key, usage string
}{
	{"street", "street", "street line"},
	{"city", "city", "city"},
	{"province", "province", "province, state or prefecture"},
	{"postal-code", "postalCode", "postal code"},
	{"country", "country", "country name or code"},
}

func addAddressFlags(cmd *cobra.Command) {
	for _, f := range addressFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().String("country-code", "", "ISO country code the address is checked against (e.g. JP, US)")
	_ = cmd.MarkFlagRequired("country-code")
	cmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
}

// addressFromFlags builds an Address from the flags that were set; unset
// flags stay absent.
func addressFromFlags(fs *pflag.FlagSet) vey.Address {
	m := make(map[string]any, len(addressFlags))
	for _, f := range addressFlags {
		if fs.Changed(f.flag) {
			v, _ := fs.GetString(f.flag)
			m[f.key] = v
		}
	}
	return vey.AddressFromMap(m)
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode json")
		}
		return nil
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func init() {
	addAddressFlags(validateCmd)
	addAddressFlags(normalizeCmd)
	rootCmd.AddCommand(validateCmd, normalizeCmd)
}
