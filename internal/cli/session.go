package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/config"
	"github.com/roach88/kledger/internal/ledger"
	"github.com/roach88/kledger/internal/store"
)

// LedgerOptions holds the journal flag shared by every command that opens a ledger.
type LedgerOptions struct {
	*RootOptions
	Database string
}

func (o *LedgerOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite journal (defaults to the config database)")
}

// session is an open journal together with the ledger replayed from it.
type session struct {
	cfg    config.Config
	store  *store.Store
	ledger *ledger.Ledger
}

// openSession resolves configuration, installs logging, opens the journal and
// replays it. Unless allowEmpty is set, the journal must already exist and
// hold a genesis block.
func openSession(ctx context.Context, opts *LedgerOptions, cmd *cobra.Command, allowEmpty bool) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cfg.Database == "" {
		return nil, NewExitError(ExitCommandError, "database path required (--db or config database)")
	}

	setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose)

	if !allowEmpty {
		if _, err := os.Stat(cfg.Database); errors.Is(err, os.ErrNotExist) {
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("database not found: %s (run kledger init)", cfg.Database))
		}
	}

	slog.Debug("opening journal", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	if !allowEmpty {
		n, err := st.CountBlocks(ctx)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		if n == 0 {
			st.Close()
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("ledger at %s is not initialized (run kledger init)", cfg.Database))
		}
	}

	l, err := st.LoadLedger(ctx, cfg.LedgerConfig())
	if err != nil {
		st.Close()
		return nil, wrapLedgerError("failed to load ledger", err)
	}

	return &session{cfg: cfg, store: st, ledger: l}, nil
}

// save writes every block the journal does not hold yet.
func (s *session) save(ctx context.Context) (int, error) {
	n, err := s.store.SaveLedger(ctx, s.ledger)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "failed to save ledger", err)
	}
	slog.Debug("journal saved", "inserted", n)
	return n, nil
}

func (s *session) close() {
	s.ledger.Destroy()
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// loadKeyFile reads a hex-encoded signing key written by keygen.
func loadKeyFile(path string) (block.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return block.PrivateKey{}, fmt.Errorf("read key file: %w", err)
	}
	return block.ParsePrivateKey(strings.TrimSpace(string(data)))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
