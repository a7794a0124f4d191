package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/seda/pkg/extract"
	"github.com/arthur-debert/seda/pkg/logging"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract a SEDA archive into the current directory",
		Long: `Extract parses the archive, recovers an attached message, decrypts
vault payloads after prompting for the password, materializes every
file relative to the current directory, and runs the post-install
command when one is declared.`,
		Example: `  # Unpack next to the archive
  seda extract project.seda

  # Archives invoke this themselves when run directly
  ./project.seda`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.extract")
			logger.Info().Str("archive", args[0]).Msg("Extracting archive")
			return extract.New(extract.Options{}).Run(args[0])
		},
	}
}
