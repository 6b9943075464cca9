// Package sms handles the SMS import command
package sms

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/models"
)

// Cmd represents the sms command
var Cmd = &cobra.Command{
	Use:   "sms",
	Short: "Import pasted bank SMS text",
	Long: `Import a text file of bank SMS alerts, one or more per line, and write
the newly imported transactions as CSV.`,
	Example: "  sms-ledger sms -i messages.txt --bank HDFC -o out.csv",
	RunE:    smsFunc,
}

func smsFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	_, err := common.ProcessFile(cmd.Context(), c.GetIngest(), common.Request{
		Source:    ingest.SourceSMS,
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
