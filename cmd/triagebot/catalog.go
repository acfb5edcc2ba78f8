package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the course catalog",
	Long: `Prints catalog answers exactly as the assistant would show them.

Without flags it lists every course. --course narrows to one course,
--semester to one of its semesters and --discipline filters disciplines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter domain.CourseFilter
		filter.Course, _ = cmd.Flags().GetString("course")
		filter.Semester, _ = cmd.Flags().GetString("semester")
		filter.Discipline, _ = cmd.Flags().GetString("discipline")

		client := catalog.NewClient(catalog.Default(), catalog.WithLogger(logger))
		if cfg.Catalog.Path != "" {
			var err error
			if client, err = catalog.Open(cfg.Catalog.Path, catalog.WithLogger(logger)); err != nil {
				return err
			}
		}

		text, err := client.Query(cmd.Context(), filter)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().String("course", "", "Course name or part of it")
	catalogCmd.Flags().String("semester", "", "Semester, e.g. 1º semestre")
	catalogCmd.Flags().String("discipline", "", "Discipline name or part of it")
}
