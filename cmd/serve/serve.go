// Package serve runs the HTTP upload service
package serve

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/logging"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload API",
	Long: `Serve the SMS and PDF upload endpoints, the transaction listing and
Prometheus metrics until interrupted.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if addr != "" {
		c.GetConfig().Server.Addr = addr
	}
	logger := c.GetLogger()
	logger.Info("Starting upload API",
		logging.F("addr", c.GetConfig().Server.Addr),
		logging.F(logging.FieldSink, c.GetSink().Name()))
	return c.NewServer().Run(cmd.Context())
}
