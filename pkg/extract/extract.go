// Package extract implements the extraction runtime: a linear pass
// over a parsed artifact that recovers the message, decrypts vault
// payloads, materializes files, and runs the post-install command.
// There are no backward transitions and no rollback; extraction runs
// to completion or to the first fatal error.
package extract

import (
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/seda/pkg/archive"
	"github.com/arthur-debert/seda/pkg/errors"
	"github.com/arthur-debert/seda/pkg/logging"
	"github.com/arthur-debert/seda/pkg/vault"
)

// Options configures a runtime invocation.
type Options struct {
	// TargetDir is where files are materialized. Defaults to the
	// current working directory.
	TargetDir string

	// ReadPassword overrides the interactive password prompt for
	// vault archives.
	ReadPassword func() (string, error)

	// GOOS overrides the platform used for post-install command
	// selection.
	GOOS string
}

// Runtime executes the extraction state machine over one artifact.
type Runtime struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a runtime with the given options.
func New(opts Options) *Runtime {
	if opts.TargetDir == "" {
		opts.TargetDir = "."
	}
	if opts.ReadPassword == nil {
		opts.ReadPassword = func() (string, error) {
			return vault.ReadPassword("Vault password: ")
		}
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	return &Runtime{
		opts:   opts,
		logger: logging.GetLogger("extract.runtime"),
	}
}

// Run parses the artifact at path and materializes its payload into
// the target directory. Vault decryption failures and post-install
// failures are fatal; per-file failures are logged and skipped.
func (r *Runtime) Run(path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot read archive %s", path)
	}

	doc, err := archive.Parse(string(text))
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Unpacking SEDA archive: %s", filepath.Base(path))

	entries := doc.Entries
	switch doc.Variant {
	case archive.VariantMessage, archive.VariantMessageAndPipeline, archive.VariantWebPolyglot:
		r.recoverContext(doc.Message)
	case archive.VariantVault:
		entries, err = r.unlock(doc.VaultBlob)
		if err != nil {
			return err
		}
	}

	r.materialize(entries)

	if cmd := doc.PostInstall.CommandFor(r.opts.GOOS); cmd != "" {
		return r.postInstall(cmd)
	}
	return nil
}

// recoverContext writes the cleaned archive message to the fixed
// side-file. Failure is logged, never fatal.
func (r *Runtime) recoverContext(message string) {
	if message == "" {
		return
	}
	dest := filepath.Join(r.opts.TargetDir, archive.MessageFileName)
	if err := os.WriteFile(dest, []byte(CleanMessage(message)), 0644); err != nil {
		r.logger.Warn().Err(err).Str("path", dest).Msg("Could not write message side-file")
		return
	}
	pterm.Info.Printfln("Message extracted to %s", archive.MessageFileName)
}

// unlock prompts for the password and decrypts the vault payload.
// It runs before any filesystem mutation: a wrong password leaves
// the target directory untouched.
func (r *Runtime) unlock(blob string) ([]archive.Entry, error) {
	password, err := r.opts.ReadPassword()
	if err != nil {
		return nil, err
	}
	entries, message, err := vault.Open(blob, password)
	if err != nil {
		return nil, err
	}
	r.recoverContext(message)
	return entries, nil
}

// materialize writes every entry under the target directory,
// overwriting existing files unconditionally. Per-entry failures are
// logged and skipped so a single bad entry never aborts the run.
func (r *Runtime) materialize(entries []archive.Entry) {
	for _, entry := range entries {
		if !safeRelPath(entry.Path) {
			r.logger.Warn().Str("path", entry.Path).Msg("Skipping entry with unsafe path")
			continue
		}
		dest := filepath.Join(r.opts.TargetDir, filepath.FromSlash(entry.Path))
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				r.logger.Warn().Err(err).Str("path", entry.Path).Msg("Could not create parent directory")
				pterm.Warning.Printfln("Error extracting %s: %v", entry.Path, err)
				continue
			}
		}
		if err := os.WriteFile(dest, entry.Data, 0644); err != nil {
			r.logger.Warn().Err(err).Str("path", entry.Path).Msg("Could not write file")
			pterm.Warning.Printfln("Error extracting %s: %v", entry.Path, err)
			continue
		}
		pterm.Success.Printfln("Extracted: %s", entry.Path)
	}
}

// postInstall invokes the platform command via the host shell. A
// nonzero exit terminates the runtime with that exit code.
func (r *Runtime) postInstall(command string) error {
	pterm.Info.Printfln("Running post-install: %s", command)

	var cmd *exec.Cmd
	if r.opts.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	cmd.Dir = r.opts.TargetDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := 1
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return errors.Wrapf(err, errors.ErrPostInstall, "post-install command failed").
			WithDetail("exitCode", code)
	}
	return nil
}

// CleanMessage strips presentation markup from a recovered message:
// interpreter lines are dropped and surrounding whitespace trimmed.
func CleanMessage(message string) string {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if strings.HasPrefix(line, "#!") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// safeRelPath rejects entry paths that would escape the target
// directory.
func safeRelPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
