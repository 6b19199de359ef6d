package cli

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Force bool

	// Rand overrides the key source (for testing). If nil, crypto/rand is used.
	Rand io.Reader
}

// KeygenResult reports a written key file.
type KeygenResult struct {
	Path      string `json:"path"`
	PublicKey string `json:"public_key"`
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen <file>",
		Short: "Generate an Ed25519 signing key",
		Long: `Generate an author signing key and write its hex-encoded seed to a file
readable only by the owner. The public key is printed.

Examples:
  kledger keygen ./author.key
  kledger keygen ./author.key --force`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing key file")

	return cmd
}

func runKeygen(opts *KeygenOptions, path string, cmd *cobra.Command) error {
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("key file %s already exists (use --force)", path))
		} else if !errors.Is(err, os.ErrNotExist) {
			return WrapExitError(ExitCommandError, "failed to check key file", err)
		}
	}

	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	key, err := block.NewPrivateKey(r)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate key", err)
	}

	if err := os.WriteFile(path, []byte(key.String()+"\n"), 0600); err != nil {
		return WrapExitError(ExitCommandError, "failed to write key file", err)
	}

	result := KeygenResult{
		Path:      path,
		PublicKey: key.Public().String(),
	}

	f := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Wrote signing key to %s\n", result.Path)
	fmt.Fprintf(f.Writer, "  public key: %s\n", result.PublicKey)
	return nil
}
