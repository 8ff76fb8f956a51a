package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"triage/internal/app"
	"triage/internal/models"
	"triage/internal/util"
)

var classifyJSON bool

// classifyCmd runs a request body through the same handler the HTTP endpoint uses.
var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "Classify a batch request from a file or stdin",
	Long: `Reads a request body of the form {"values":[{"recordId":...,"data":{"text":...}}]}
from a file (or stdin when the argument is "-" or omitted) and prints one result per record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		raw, err := readRequestBody(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if classifyJSON {
			body, status := appInstance.BatchHandler.Handle(cmd.Context(), raw)
			if status != http.StatusOK {
				return fmt.Errorf("request rejected: %s", body)
			}
			_, err := fmt.Fprintln(out, string(body))
			return err
		}

		resp, err := classifyBody(cmd.Context(), appInstance, raw)
		if err != nil {
			return err
		}
		renderResults(out, resp)

		total, err := appInstance.CostTracker.TotalCost(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read classifier cost: %w", err)
		}
		if total > 0 {
			fmt.Fprintf(out, "Classifier cost: $%.6f\n", total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the raw JSON response instead of a table")
}

func readRequestBody(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read request from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return util.CleanRequestFile(raw, args[0])
}

// classifyBody runs raw through the batch handler and decodes the response.
func classifyBody(ctx context.Context, a *app.App, raw []byte) (*models.Response, error) {
	body, status := a.BatchHandler.Handle(ctx, raw)
	if status != http.StatusOK {
		return nil, fmt.Errorf("request rejected: %s", body)
	}
	var resp models.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}
	return &resp, nil
}

func renderResults(w io.Writer, resp *models.Response) {
	if len(resp.Values) == 0 {
		fmt.Fprintln(w, "No records in request.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Record ID", "Status", "Category / Error"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(true)
	table.SetAutoWrapText(false)

	failed := 0
	for _, v := range resp.Values {
		id := v.RecordID.String()
		if v.RecordID.IsZero() {
			id = "(none)"
		}
		if v.Failed() {
			failed++
			table.Append([]string{id, color.RedString("ERROR"), v.Errors[0].Message})
			continue
		}
		table.Append([]string{id, color.GreenString("OK"), v.Data.Category})
	}
	table.Render()

	fmt.Fprintf(w, "%d record(s): %d classified, %d failed\n", len(resp.Values), len(resp.Values)-failed, failed)
}
