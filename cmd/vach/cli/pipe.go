package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	pipeInput    string
	pipeResource string
	pipeKeypair  string
	pipeSecret   string
	pipePublic   string
	pipeMagic    string
)

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Write one resource to standard output",
	Long: `Pipe fetches a single resource and writes exactly its bytes to stdout,
nothing else. Diagnostics go to stderr.

Examples:
  vach pipe -i assets.vach -r config.toml > config.toml
  vach pipe -i sealed.vach -r key.bin -k keys.kp | sha256sum`,
	RunE: runPipe,
}

func init() {
	pipeCmd.Flags().StringVarP(&pipeInput, "input", "i", "", "Archive file to read (required)")
	pipeCmd.Flags().StringVarP(&pipeResource, "resource", "r", "", "Identifier of the resource to fetch (required)")
	pipeCmd.Flags().StringVarP(&pipeKeypair, "keypair", "k", "", "Keypair file (*.kp)")
	pipeCmd.Flags().StringVarP(&pipeSecret, "secret", "s", "", "Secret key file (*.sk)")
	pipeCmd.Flags().StringVarP(&pipePublic, "public", "p", "", "Public key file (*.pk)")
	pipeCmd.Flags().StringVarP(&pipeMagic, "magic", "m", "", "Archive magic (5 characters)")
	//nolint:errcheck // the flags are declared above
	pipeCmd.MarkFlagRequired("input")
	//nolint:errcheck // the flags are declared above
	pipeCmd.MarkFlagRequired("resource")
	rootCmd.AddCommand(pipeCmd)
}

func runPipe(_ *cobra.Command, _ []string) error {
	keys, err := resolveKeys(pipeKeypair, pipeSecret, pipePublic)
	if err != nil {
		return err
	}
	opts, err := archiveOptions(pipeMagic, keys)
	if err != nil {
		return err
	}

	archive, err := openArchiveFile(pipeInput, opts)
	if err != nil {
		return err
	}
	defer archive.Close()

	_, err = archive.FetchInto(pipeResource, os.Stdout)
	return err
}
