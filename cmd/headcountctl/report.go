package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"headcount/internal/cli"
	"headcount/internal/core"
	"headcount/internal/export"
	"headcount/internal/services"
)

func reportCmd(a *app) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show records in a date range with their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.generate(cmd, rf)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	rf.register(cmd)
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		rf      rangeFlags
		targets cli.ExportTargets
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a report to report_<date>.xlsx",
		Long: `Generates a report and writes it, with a totals row, to EXPORT_DIR.
--s3 also uploads it to EXPORT_S3_BUCKET and --sheets mirrors it to a
tab of GOOGLE_SPREADSHEET_ID. An existing file for the same day is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.generate(cmd, rf)
			if err != nil {
				return err
			}

			exporter, err := a.newExporter(cmd.Context(), targets)
			if err != nil {
				return err
			}
			res, err := exporter.Export(cmd.Context(), report.Render(), a.now())
			if err != nil && !errors.Is(err, export.ErrMirrorFailed) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %s (%d rows)", res.FileName, res.Rows)))
			for _, loc := range res.Locations {
				fmt.Fprintln(out, "  "+loc)
			}
			if err != nil {
				fmt.Fprintln(out, cli.FormatWarning("Spreadsheet copy failed; the workbook above was written"))
			}
			return err
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&targets.S3, "s3", false, "also upload to EXPORT_S3_BUCKET")
	cmd.Flags().BoolVar(&targets.Sheets, "sheets", false, "also mirror to GOOGLE_SPREADSHEET_ID")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, rf rangeFlags) (core.Report, error) {
	filter, start, end, err := rf.resolve(a.now())
	if err != nil {
		return core.Report{}, err
	}
	return services.NewReportEngine(a.res.Store, nil).Generate(cmd.Context(), filter, start, end)
}

func writeReport(out io.Writer, r core.Report) error {
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Report %s  %s .. %s", r.Filter, r.Start.ISO(), r.End.ISO())))

	rows := r.Render()
	if len(rows) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No records"))
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			cli.TableHeaderStyle.Render("ID"),
			cli.TableHeaderStyle.Render("Department"),
			cli.TableHeaderStyle.Render("Cairo"),
			cli.TableHeaderStyle.Render("Tenth"),
			cli.TableHeaderStyle.Render("Date"))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			strings.Repeat("─", 4), strings.Repeat("─", 16), strings.Repeat("─", 5), strings.Repeat("─", 5), strings.Repeat("─", 10))
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", row.ID, row.Department, row.Cairo, row.Tenth, row.Date)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	fmt.Fprintln(out, cli.FormatTotals(r.TotalCairo, r.TotalTenth))
	return nil
}
