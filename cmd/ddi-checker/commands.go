package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/console"
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/report"
	"github.com/ddi-checker/internal/service"
)

type checkOptions struct {
	drugs     []string
	pediatric bool
	age       float64
	weight    float64
	csvPath   string
	pdfPath   string
	noArchive bool
}

func checkCmd(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run an interaction check for two or more drugs",
		Example: `  ddi-checker check --drug Aspirin:dose=100 --drug Warfarin:dose=5
  ddi-checker check --drug Amoxicillin:dose=250 --drug Ibuprofen --pediatric --weight 18 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := a.outputFormat()
			if err != nil {
				return err
			}

			drugs := make([]domain.DrugEntry, 0, len(opts.drugs))
			for _, spec := range opts.drugs {
				entry, err := console.ParseDrugSpec(spec)
				if err != nil {
					return err
				}
				drugs = append(drugs, entry)
			}

			var store archive.Store
			if !opts.noArchive {
				if store, err = a.openArchive(ctx, false); err != nil {
					return err
				}
			}
			if store != nil {
				defer store.Close()
			}

			session := service.NewSession(a.client(), a.renderer(), store, a.logger)
			if err := session.EditEntries(func(l *service.EntryList) error {
				for i, d := range drugs {
					if i < l.Len() {
						if err := l.Set(i, d); err != nil {
							return err
						}
						continue
					}
					l.Append(d)
				}
				return nil
			}); err != nil {
				return err
			}

			patient := domain.PatientContext{IsPediatric: opts.pediatric}
			if cmd.Flags().Changed("age") {
				patient.Age = domain.Float(opts.age)
			}
			if cmd.Flags().Changed("weight") {
				patient.WeightKg = domain.Float(opts.weight)
			}
			session.SetPatient(patient)

			model, err := session.Submit(ctx)
			if err != nil {
				return err
			}
			if err := report.Write(cmd.OutOrStdout(), model, format); err != nil {
				return err
			}

			if opts.csvPath != "" {
				file, err := session.ExportCSV(ctx)
				if err != nil {
					return err
				}
				if err := writeExport(cmd, opts.csvPath, file); err != nil {
					return err
				}
			}
			if opts.pdfPath != "" {
				file, err := session.ExportPDF(ctx)
				if err != nil {
					return err
				}
				if err := writeExport(cmd, opts.pdfPath, file); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.drugs, "drug", "d", nil, "drug as name[:dose=,unit=,freq=,route=] (repeatable)")
	f.BoolVar(&opts.pediatric, "pediatric", false, "pediatric patient (requires --weight)")
	f.Float64Var(&opts.age, "age", 0, "patient age in years")
	f.Float64Var(&opts.weight, "weight", 0, "patient weight in kg")
	f.StringVar(&opts.csvPath, "csv", "", "also save the CSV export to this path")
	f.StringVar(&opts.pdfPath, "pdf", "", "also save the PDF report to this path")
	f.BoolVar(&opts.noArchive, "no-archive", false, "do not keep the report in the local archive")

	return cmd
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent checks known to the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			session := service.NewSession(a.client(), a.renderer(), nil, a.logger)
			return report.WriteHistory(cmd.OutOrStdout(), session.RefreshHistory(cmd.Context()), format)
		},
	}
}

func suggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Look up drug names containing text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			suggestions, closeCache := a.suggestions(ctx, a.client())
			defer closeCache()

			query := args[0]
			for _, arg := range args[1:] {
				query += " " + arg
			}
			names, err := suggestions.Suggest(ctx, query)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func writeExport(cmd *cobra.Command, path string, file *domain.ExportFile) error {
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%s, %d bytes)\n", path, file.ContentType, len(file.Data))
	return nil
}
