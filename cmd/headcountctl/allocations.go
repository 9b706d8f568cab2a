package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"headcount/internal/cli"
	"headcount/internal/core"
	"headcount/internal/services"
)

func departmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List known departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.res.Service.Departments(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(deps) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No departments recorded yet"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatTitle("Departments"))
			for _, d := range deps {
				fmt.Fprintln(out, "  "+d)
			}
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var f allocationFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a department's headcount for one day",
		Example: `  headcountctl add --department Sales --cairo 5 --tenth 3
  headcountctl add --department HR --cairo 2 --date 2024-01-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := services.NewFormController(cmd.Context(), a.res.Service, a.now)
			if err != nil {
				return err
			}
			res, err := form.Save(cmd.Context(), services.FormInput{
				Department: f.department,
				Cairo:      f.cairo,
				Tenth:      f.tenth,
				Date:       f.date,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved allocation #%d", res.ID)))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var f allocationFlags
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change fields of an existing record; omitted flags keep their value",
		Example: "  headcountctl edit 12 --tenth 4",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			rec, err := a.res.Service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			form, err := services.NewFormController(cmd.Context(), a.res.Service, a.now)
			if err != nil {
				return err
			}
			row := core.RenderRecord(rec)
			if err := form.LoadForEdit(&row); err != nil {
				return err
			}

			cur := form.Fields()
			in := services.FormInput{
				Department: cur.Department,
				Cairo:      cur.Cairo,
				Tenth:      cur.Tenth,
				Date:       cur.Date.ISO(),
			}
			flags := cmd.Flags()
			if flags.Changed("department") {
				in.Department = f.department
			}
			if flags.Changed("cairo") {
				in.Cairo = f.cairo
			}
			if flags.Changed("tenth") {
				in.Tenth = f.tenth
			}
			if flags.Changed("date") {
				in.Date = f.date
			}

			if _, err := form.Save(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated allocation #%d", id)))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
