package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
	"github.com/yungbote/shipping-estimator/internal/reference"
)

type rootOptions struct {
	ratesPath       string
	definitionsPath string
	jsonOut         bool
	timeout         time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ratectl",
		Short:         "Look up shipping rates and ask for free-text estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ratesPath, "rates", "data/shipping_rate_by_country.csv", "rate table CSV")
	root.PersistentFlags().StringVar(&opts.definitionsPath, "definitions", "data/shipping_definitions_reference.csv", "definitions CSV")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall timeout for network calls")

	root.AddCommand(
		newLookupCmd(opts),
		newOptionsCmd(opts),
		newDefinitionsCmd(opts),
		newEstimateCmd(opts),
	)
	return root
}

type keyFlags struct {
	size    string
	weight  string
	service string
	country string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.size, "size", "", "package size tier")
	cmd.Flags().StringVar(&k.weight, "weight", "", "weight class")
	cmd.Flags().StringVar(&k.service, "service", "", "service tier")
	cmd.Flags().StringVar(&k.country, "country", "", "destination country")
}

func (k *keyFlags) key() shipping.Key {
	return shipping.Key{SizeTier: k.size, WeightClass: k.weight, ServiceTier: k.service, ToCountry: k.country}
}

func (o *rootOptions) loadRates() (*ratetable.Table, error) {
	return ratetable.LoadFile(o.ratesPath)
}

func (o *rootOptions) loadDefinitions() (*reference.Glossary, error) {
	return reference.LoadFile(o.definitionsPath)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSelection(w io.Writer, k shipping.Key) {
	fmt.Fprintf(w, "Package Size:  %s\n", k.SizeTier)
	fmt.Fprintf(w, "Weight Class:  %s\n", k.WeightClass)
	fmt.Fprintf(w, "Service Tier:  %s\n", k.ServiceTier)
	fmt.Fprintf(w, "To Country:    %s\n", k.ToCountry)
}

func writeRate(w io.Writer, r *shipping.RateRange) {
	if r == nil {
		fmt.Fprintln(w, "No matching rate found for this combination. Try adjusting inputs.")
		return
	}
	fmt.Fprintln(w, "Estimated Rate Range")
	fmt.Fprintf(w, "  Low:     $%.2f\n", r.Low)
	fmt.Fprintf(w, "  Average: $%.2f\n", r.Average)
	fmt.Fprintf(w, "  High:    $%.2f\n", r.High)
}
