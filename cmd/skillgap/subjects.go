package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List catalog subjects for a term",
	RunE:  runSubjects,
}

var (
	subjectsYear     string
	subjectsSemester string
	subjectsTerm     string
	subjectsOutput   string
)

func init() {
	subjectsCmd.Flags().StringVar(&subjectsYear, "year", "", "Catalog year, e.g. 2025")
	subjectsCmd.Flags().StringVar(&subjectsSemester, "semester", "", "Catalog semester: spring, summer or fall")
	subjectsCmd.Flags().StringVar(&subjectsTerm, "term", "", `Free-form term such as "Fall 2025"`)
	subjectsCmd.Flags().StringVarP(&subjectsOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	rootCmd.AddCommand(subjectsCmd)
}

func runSubjects(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	term, err := resolveTerm(subjectsTerm, subjectsYear, subjectsSemester)
	if err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, closeCatalog, err := newCatalogClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	list, err := client.Subjects(ctx, term.Year, term.Semester)
	if err != nil {
		return fmt.Errorf("failed to list subjects for %s: %w", term, err)
	}
	return writeJSON(subjectsOutput, list)
}
