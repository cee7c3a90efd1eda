package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/internal/utils"
	"github.com/sw33tLie/fundscope/pkg/batch"
	"github.com/sw33tLie/fundscope/pkg/export"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/views"
)

// exportCmd implements: fundscope export --views donors,advisors --dir out/
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export several views to xlsx workbooks at once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		viewNames, _ := cmd.Flags().GetString("views")
		dir, _ := cmd.Flags().GetString("dir")
		search, _ := cmd.Flags().GetString("search")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		var selected []views.View
		for _, name := range utils.SplitList(viewNames) {
			if name == "all" {
				selected = selected[:0]
				for _, n := range views.Names() {
					selected = append(selected, views.Registry[n])
				}
				break
			}
			v, ok := views.Registry[name]
			if !ok {
				return fmt.Errorf("unknown view %q (available: %s)", name, strings.Join(views.Names(), ", "))
			}
			selected = append(selected, v)
		}
		if len(selected) == 0 {
			return fmt.Errorf("no views selected")
		}

		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}
		db, err := openSessionDB()
		if err != nil {
			return err
		}
		defer db.Close()

		t := currentTheme(cmd)
		res, err := batch.Run(cmd.Context(), batch.Config{
			Views:       selected,
			Querier:     client,
			Sessions:    db,
			Sink:        &export.Sink{Sharer: export.DirSharer{Dir: dir}},
			Search:      search,
			Concurrency: concurrency,
			Log:         utils.Log,
		})
		if err != nil {
			return err
		}

		for _, vr := range res.Views {
			msg := vr.Outcome.Message()
			switch {
			case errors.Is(vr.Err, storage.ErrMissingSession):
				fmt.Printf("%-10s %s\n", vr.View, t.Error.Render(missingSessionMessage))
			case vr.Err != nil:
				utils.Log.Debugf("%v", vr.Err)
				fmt.Printf("%-10s %s\n", vr.View, t.Error.Render(msg))
			case vr.Outcome.Status == export.Success:
				fmt.Printf("%-10s %s %s\n", vr.View, msg, t.Muted.Render(vr.Outcome.Location))
			default:
				fmt.Printf("%-10s %s\n", vr.View, msg)
			}
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("%d of %d exports failed", len(res.Errors), len(res.Views))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("views", "all", "Comma-separated views to export: "+strings.Join(views.Names(), ", ")+", or all")
	exportCmd.Flags().String("dir", ".", "Directory the workbooks are saved to")
	exportCmd.Flags().StringP("search", "s", "", "Only export rows containing this text")
	exportCmd.Flags().Int("concurrency", 3, "Number of views exported at the same time")
}
