package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"triage/pkg/categorizer"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active keyword rules",
	Long:  `Prints the keyword rules in match order. The first rule with a matching keyword wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		kc, ok := appInstance.Categorizer.(*categorizer.KeywordCategorizer)
		if !ok {
			fmt.Fprintf(out, "Keyword rules are not in use (classifier: %s).\n", appInstance.ClassifierName)
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"#", "Category", "Keywords"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for i, r := range kc.Rules() {
			table.Append([]string{fmt.Sprint(i + 1), r.Category, strings.Join(r.Keywords, ", ")})
		}
		table.Render()
		fmt.Fprintf(out, "Fallback category: %s\n", kc.Fallback())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
