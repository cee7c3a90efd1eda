package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/reports"
	"github.com/sw33tLie/fundscope/pkg/screen"
	"github.com/sw33tLie/fundscope/pkg/views"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Custom reports",
}

var reportsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List report types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		groups, err := loadReportGroups(cmd)
		if err != nil {
			return err
		}
		t := currentTheme(cmd)
		for _, typ := range groups.Types() {
			fmt.Printf("%s %s\n", typ, t.Muted.Render(fmt.Sprintf("(%d)", len(groups.Options(typ)))))
		}
		return nil
	},
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the reports of one type, or every report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		groups, err := loadReportGroups(cmd)
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		sel := reports.NewSelection(groups)
		if err := sel.SelectType(typ); err != nil {
			return err
		}

		recs := optionRecords(sel.Options())
		search, _ := cmd.Flags().GetString("search")
		format, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")
		return writeRecords(os.Stdout, currentTheme(cmd), format, delimiter, records.Layout(recs), records.Filter(recs, search), false)
	},
}

var reportsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a custom report",
	Long: `Run a custom report, picked either by id with --operation or by --type and --name.
Dates use the mm-dd-yyyy format.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		typ, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		operation, _ := cmd.Flags().GetString("operation")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		opt := reports.GroupedOption{Value: operation, FullLabel: operation}
		if typ != "" || operation == "" {
			groups, err := loadReportGroups(cmd)
			if err != nil {
				return err
			}
			if opt, err = selectReport(groups, typ, name, operation); err != nil {
				return err
			}
		}

		sc, err := loadView(cmd, views.CustomReport{}, func(sc *screen.Screen) {
			sc.SelectType(opt.ParentType)
			sc.SelectOperation(opt.Value)
			if from != "" || to != "" {
				sc.SetDateRange(&screen.DateRange{From: from, To: to})
			}
		})
		if err != nil {
			return err
		}
		return showView(cmd, sc, opt.FullLabel)
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsTypesCmd, reportsListCmd, reportsRunCmd)

	reportsListCmd.Flags().String("type", "", "Only list the reports of this type")
	reportsListCmd.Flags().StringP("search", "s", "", "Only keep reports containing this text")
	reportsListCmd.Flags().StringP("output", "o", "table", "Output format. Supported: table, json, yaml, txt")
	reportsListCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")

	reportsRunCmd.Flags().String("type", "", "Report type, the part of the report name before \" - \"")
	reportsRunCmd.Flags().String("name", "", "Report name within --type")
	reportsRunCmd.Flags().String("operation", "", "Report id")
	reportsRunCmd.Flags().String("from", "", "Begin date (mm-dd-yyyy)")
	reportsRunCmd.Flags().String("to", "", "End date (mm-dd-yyyy)")
	addListFlags(reportsRunCmd)
}

func loadReportGroups(cmd *cobra.Command) (*reports.Groups, error) {
	sc, err := loadView(cmd, views.CustomReportsList{})
	if err != nil {
		return nil, err
	}
	return reports.Group(reports.FromRecords(sc.Records())), nil
}

// selectReport resolves the report to run through the dependent type and
// operation selection, so an id outside the chosen type is rejected.
func selectReport(groups *reports.Groups, typ, name, operation string) (reports.GroupedOption, error) {
	sel := reports.NewSelection(groups)
	if err := sel.SelectType(typ); err != nil {
		return reports.GroupedOption{}, err
	}

	if operation == "" {
		if name == "" {
			return reports.GroupedOption{}, fmt.Errorf("pick a report with --operation or --type and --name")
		}
		opt, ok := groups.Find(typ, name)
		if !ok {
			return reports.GroupedOption{}, fmt.Errorf("no report named %q", name)
		}
		operation = opt.Value
	}

	if err := sel.SelectOperation(operation); err != nil {
		return reports.GroupedOption{}, err
	}
	opt, _ := sel.Operation()
	return opt, nil
}

func optionRecords(opts []reports.GroupedOption) []records.Record {
	recs := make([]records.Record, 0, len(opts))
	for _, o := range opts {
		recs = append(recs, records.FromStrings("type", o.ParentType, "report", o.Label, "id", o.Value))
	}
	return recs
}
