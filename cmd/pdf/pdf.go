// Package pdf handles PDF statement import commands
package pdf

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/models"
)

// Cmd represents the pdf command
var Cmd = &cobra.Command{
	Use:     "pdf",
	Short:   "Import a PDF bank statement",
	Long:    `Extract the transaction rows of a text-based PDF statement and write the newly imported transactions as CSV.`,
	Example: "  sms-ledger pdf -i statement.pdf --bank SBI -o out.csv",
	RunE:    pdfFunc,
}

func pdfFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	_, err := common.ProcessFile(cmd.Context(), c.GetIngest(), common.Request{
		Source:    ingest.SourcePDF,
		UserID:    root.UserID(),
		Bank:      models.ParseBank(root.Bank()),
		Input:     root.SharedFlags.Input,
		Output:    root.SharedFlags.Output,
		Delimiter: c.GetConfig().Delimiter(),
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
	}, c.GetLogger())
	return err
}
