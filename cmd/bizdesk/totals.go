package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diewo77/bizdesk/internal/lineitems"
)

type totalsFile struct {
	Items    []lineitems.Input `json:"items"`
	Discount any               `json:"discount"`
	Tax      any               `json:"tax"`
	TaxRate  any               `json:"tax_rate"`
}

type totalsOutput struct {
	Items []lineitems.LineItem `json:"items"`
	lineitems.Totals
}

func totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals <file|->",
		Short: "Compute line amounts and totals of a JSON document",
		Long: `Read {"items": [...], "discount": ..., "tax": ...} from a file or stdin and
print the recomputed rows and totals. Set "tax_rate" instead of "tax" to
derive the tax from the discounted subtotal.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var in totalsFile
			dec := json.NewDecoder(r)
			dec.UseNumber()
			if err := dec.Decode(&in); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			out, err := computeTotals(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func computeTotals(in totalsFile) (totalsOutput, error) {
	if err := lineitems.ValidateInputs(in.Items); err != nil {
		return totalsOutput{}, err
	}
	discount, ok := lineitems.ParseStrict(in.Discount)
	if !ok {
		return totalsOutput{}, fmt.Errorf("discount: %v", in.Discount)
	}
	items := lineitems.FromInputs(in.Items)
	if in.TaxRate != nil {
		rate, ok := lineitems.ParseStrict(in.TaxRate)
		if !ok {
			return totalsOutput{}, fmt.Errorf("tax_rate: %v", in.TaxRate)
		}
		return totalsOutput{Items: items, Totals: lineitems.ComputeTaxedTotals(items, discount, rate)}, nil
	}
	tax, ok := lineitems.ParseStrict(in.Tax)
	if !ok {
		return totalsOutput{}, fmt.Errorf("tax: %v", in.Tax)
	}
	return totalsOutput{Items: items, Totals: lineitems.ComputeTotals(items, discount, tax)}, nil
}
