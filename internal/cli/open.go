package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/CavHack/EinsteinDB/internal/transact"
)

// openConn opens (and bootstraps, if new) the store named by --db.
func openConn(ctx context.Context, opts *RootOptions) (*transact.Conn, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conn, err := transact.Open(ctx, opts.DBPath, transact.WithLogger(log))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening store", err)
	}
	return conn, nil
}
