package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/shipping-estimator/internal/app"
	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/estimate"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var kf keyFlags
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up the rate range for one combination",
		Long: `Looks up the first row of the rate table matching all four values exactly.
A missing combination is reported, not treated as an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := kf.key()
			if missing := key.Missing(); len(missing) > 0 {
				return fmt.Errorf("missing flags for: %s", strings.Join(missing, ", "))
			}
			table, err := opts.loadRates()
			if err != nil {
				return err
			}

			ans := estimate.Answer{Key: key}
			if entry, ok := table.Lookup(key); ok {
				r := entry.Range()
				ans.Found = true
				ans.Rate = &r
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, ans)
			}
			writeSelection(out, key)
			fmt.Fprintln(out)
			writeRate(out, ans.Rate)
			return nil
		},
	}
	kf.register(cmd)
	return cmd
}

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the distinct values of each selector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.loadRates()
			if err != nil {
				return err
			}
			o := table.Options()
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, o)
			}
			groups := []struct {
				title  string
				values []string
			}{
				{"Package Size", o.SizeTiers},
				{"Weight Class", o.WeightClasses},
				{"Service Tier", o.ServiceTiers},
				{"Destination Country", o.ToCountries},
			}
			for i, g := range groups {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", g.title)
				for _, v := range g.values {
					fmt.Fprintf(out, "  %s\n", v)
				}
			}
			return nil
		},
	}
}

func newDefinitionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "definitions [TERM]",
		Short: "Explain the terms used by the rate table",
		Long:  `Prints every term grouped by category, or only TERM when given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gl, err := opts.loadDefinitions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				e, ok := gl.Define(args[0])
				if !ok {
					return fmt.Errorf("no definition for %q", args[0])
				}
				if opts.jsonOut {
					return writeJSON(out, e)
				}
				fmt.Fprintf(out, "%s (%s): %s\n", e.Name, e.Category, e.Definition)
				return nil
			}

			sections := gl.Categories()
			if opts.jsonOut {
				return writeJSON(out, sections)
			}
			for i, s := range sections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "## %s\n", s.Category)
				for _, e := range s.Entries {
					fmt.Fprintf(out, "%s: %s\n", e.Name, e.Definition)
				}
			}
			return nil
		},
	}
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var (
		kf    keyFlags
		model string
	)
	cmd := &cobra.Command{
		Use:   "estimate QUESTION",
		Short: "Ask the completion service for a free-text estimate",
		Long: `Looks up the rate for the selected combination (any flags may be omitted),
then sends one prompt to the configured model. The reply is printed as-is.
Models come from the service config (SHIPRATE_CONFIG_PATH or config/config.*).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(args[0])
			if question == "" {
				return fmt.Errorf("question is required")
			}

			cfg, err := config.Load(config.WithEstimatorModel(model))
			if err != nil {
				return err
			}
			mc, ok := cfg.EstimatorModel()
			if !ok {
				return fmt.Errorf("no estimator model configured (set --model or estimator.model)")
			}

			table, err := opts.loadRates()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			est, err := app.BuildEstimator(ctx, mc, cfg.Estimator)
			if err != nil {
				return err
			}
			ans := estimate.NewService(table, est, nil).Ask(ctx, estimate.Request{
				Question: question,
				Key:      kf.key(),
			})

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, ans)
			}
			writeRate(out, ans.Rate)
			fmt.Fprintln(out)
			if ans.EstimateError != "" {
				fmt.Fprintf(out, "Estimate unavailable: %s\n", ans.EstimateError)
				return nil
			}
			fmt.Fprintln(out, ans.Estimate)
			return nil
		},
	}
	kf.register(cmd)
	cmd.Flags().StringVar(&model, "model", "", "model id from the config (overrides estimator.model)")
	return cmd
}
