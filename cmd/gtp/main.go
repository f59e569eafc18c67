// Command gtp bridges a running board server to the Go Text Protocol on
// stdin/stdout, so GTP clients can play against the physical board.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"goboard/internal/gtp"
)

func main() {
	addr := flag.String("addr", "localhost:5410", "host:port of the board server")
	flag.Parse()

	logger := NewLogger()
	defer logger.Sync()

	client, err := gtp.Dial(logger, *addr)
	if err != nil {
		logger.Fatalw("failed to connect to board server", "addr", *addr, "error", err)
	}
	defer client.Close()

	session := gtp.NewSession(logger, client)
	if err := session.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		logger.Fatalw("gtp session failed", "error", err)
	}
}

// NewLogger logs to stderr only: stdout belongs to the protocol.
func NewLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
