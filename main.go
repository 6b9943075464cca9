// Command sms-ledger imports bank SMS alerts and PDF statements.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/sms-ledger/cmd/categorize"
	"fjacquet/sms-ledger/cmd/pdf"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/cmd/serve"
	"fjacquet/sms-ledger/cmd/sms"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(sms.Cmd)
	root.Cmd.AddCommand(pdf.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
