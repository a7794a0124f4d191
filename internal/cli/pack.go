package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/collect"
	"github.com/arthur-debert/seda/pkg/config"
	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/arthur-debert/seda/pkg/logging"
	"github.com/arthur-debert/seda/pkg/vault"
)

type packOptions struct {
	message       string
	messageFile   string
	postInstall   string
	web           bool
	vaultArchive  bool
	recursiveSeda bool
	ignoreDirs    string
	ignoreExts    string
}

func newPackCmd() *cobra.Command {
	opts := &packOptions{}

	cmd := &cobra.Command{
		Use:   "pack <source-dir> [output-name]",
		Short: "Pack a directory tree into a SEDA archive",
		Long: `Pack walks the source directory, serializes every accepted file
into a single self-extracting artifact, and names it with the suffix
matching the selected features.`,
		Example: `  # Standard archive, named after the source directory
  seda pack ./myproject

  # Attach a message (commit archive)
  seda pack ./myproject -m "Fix bug #42"

  # Post-install pipeline, split per platform
  seda pack ./myproject --post-install "win:setup.bat,unix:make install"

  # Password-encrypted vault
  seda pack ./myproject --vault`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := ""
			if len(args) > 1 {
				output = args[1]
			}
			return runPack(args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Message to embed in the archive")
	cmd.Flags().StringVar(&opts.messageFile, "message-file", "", "File containing the message to embed")
	cmd.Flags().StringVar(&opts.postInstall, "post-install", "", "Command to run after extraction (win:/unix: prefix tags split per platform)")
	cmd.Flags().BoolVar(&opts.web, "web", false, "Wrap the archive so it embeds in markup as a comment")
	cmd.Flags().BoolVar(&opts.vaultArchive, "vault", false, "Encrypt the payload with a password")
	cmd.Flags().BoolVar(&opts.recursiveSeda, "recursive-pack-seda", false, "Allow packing of nested .seda archives")
	cmd.Flags().StringVar(&opts.ignoreDirs, "ignore-dirs", "", "Comma-separated additional directory names to ignore")
	cmd.Flags().StringVar(&opts.ignoreExts, "ignore-exts", "", "Comma-separated additional extensions to ignore")

	return cmd
}

func runPack(source, output string, opts *packOptions) error {
	logger := logging.GetLogger("cli.pack")

	message, err := resolveMessage(opts)
	if err != nil {
		return err
	}

	postInstall := archive.ParsePostInstall(opts.postInstall)
	variant := archive.Select(message != "", !postInstall.IsZero(), opts.vaultArchive, opts.web)

	if output == "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve source directory %s", source)
		}
		output = filepath.Base(abs)
	}
	output = archive.ApplySuffix(output, variant)

	cfg, err := config.Load(source)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "failed to load configuration")
	}
	dirs := append(cfg.Ignore.Dirs, splitList(opts.ignoreDirs)...)
	exts := append(cfg.Ignore.Extensions, splitList(opts.ignoreExts)...)
	rules := collect.NewRules(dirs, exts, opts.recursiveSeda)

	logger.Info().
		Str("source", source).
		Str("output", output).
		Str("variant", variant.String()).
		Bool("recursive", opts.recursiveSeda).
		Msg("Packing archive")
	pterm.Info.Printfln("Packing '%s' into '%s'", filepath.Base(source), output)

	entries, err := collect.NewCollector(rules).Collect(source)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		pterm.Success.Printfln("Added: %s", entry.Path)
	}

	doc := &archive.Document{
		Variant:     variant,
		PostInstall: postInstall,
	}
	if opts.vaultArchive {
		password, err := vault.PromptNewPassword()
		if err != nil {
			return err
		}
		blob, err := vault.Seal(entries, message, password)
		if err != nil {
			return err
		}
		doc.VaultBlob = blob
	} else {
		doc.Message = message
		doc.Entries = entries
	}

	if err := archive.WriteArchive(output, doc); err != nil {
		return err
	}

	pterm.Info.Printfln("SEDA archive created: %s", output)
	return nil
}

// resolveMessage returns the inline message or the message file
// content; a requested file that cannot be read aborts the pack.
func resolveMessage(opts *packOptions) (string, error) {
	if opts.messageFile == "" {
		return opts.message, nil
	}
	data, err := os.ReadFile(opts.messageFile)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrMessageFile, "cannot read message file %s", opts.messageFile)
	}
	return string(data), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
