package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/report"
)

func archiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse reports kept in the local archive",
	}

	cmd.AddCommand(archiveListCmd(a))
	cmd.AddCommand(archiveShowCmd(a))
	cmd.AddCommand(archiveDeleteCmd(a))
	cmd.AddCommand(archiveExportCmd(a))
	return cmd
}

// withArchive opens the configured archive for the duration of fn.
func (a *app) withArchive(cmd *cobra.Command, fn func(archive.Store) error) error {
	store, err := a.openArchive(cmd.Context(), true)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("report archive is disabled (archive.driver=%s)", archive.DriverNone)
	}
	defer store.Close()
	return fn(store)
}

func archiveListCmd(a *app) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			return a.withArchive(cmd, func(store archive.Store) error {
				ctx := cmd.Context()
				records, err := store.List(ctx, limit, offset)
				if err != nil {
					return err
				}
				total, err := store.Count(ctx)
				if err != nil {
					return err
				}
				return report.WriteRecords(cmd.OutOrStdout(), records, total, format)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of reports to skip")
	return cmd
}

func archiveShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid report id: %w", err)
			}
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			return a.withArchive(cmd, func(store archive.Store) error {
				record, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("report not found: %s", id)
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "Report %s from %s\n", record.ID, record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				model := a.renderer().Render(&domain.AssessmentResponse{
					Summary: record.Summary,
					Pairs:   record.Pairs,
				})
				return report.Write(cmd.OutOrStdout(), model, format)
			})
		},
	}
}

func archiveDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid report id: %w", err)
			}
			return a.withArchive(cmd, func(store archive.Store) error {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %s\n", id)
				return nil
			})
		},
	}
}

func archiveExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every archived report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArchive(cmd, func(store archive.Store) error {
				return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
			})
		},
	}
}
