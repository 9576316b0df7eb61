package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach/internal/safepath"
)

var (
	unpackInput   string
	unpackOutput  string
	unpackKeypair string
	unpackSecret  string
	unpackPublic  string
	unpackMagic   string
)

var unpackCmd = &cobra.Command{
	Use:   "unpack",
	Short: "Extract every resource of an archive to a directory",
	Long: `Unpack fetches every entry and writes it below the output directory,
treating identifiers as relative paths. Identifiers that would escape the
destination are rejected.

Examples:
  vach unpack -i assets.vach
  vach unpack -i sealed.vach -o ./out -k keys.kp`,
	RunE: runUnpack,
}

func init() {
	unpackCmd.Flags().StringVarP(&unpackInput, "input", "i", "", "Archive file to read (required)")
	unpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", ".", "Destination directory")
	unpackCmd.Flags().StringVarP(&unpackKeypair, "keypair", "k", "", "Keypair file (*.kp)")
	unpackCmd.Flags().StringVarP(&unpackSecret, "secret", "s", "", "Secret key file (*.sk)")
	unpackCmd.Flags().StringVarP(&unpackPublic, "public", "p", "", "Public key file (*.pk)")
	unpackCmd.Flags().StringVarP(&unpackMagic, "magic", "m", "", "Archive magic (5 characters)")
	//nolint:errcheck // the flag is declared above
	unpackCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(unpackCmd)
}

func runUnpack(_ *cobra.Command, _ []string) error {
	keys, err := resolveKeys(unpackKeypair, unpackSecret, unpackPublic)
	if err != nil {
		return err
	}
	opts, err := archiveOptions(unpackMagic, keys)
	if err != nil {
		return err
	}

	archive, err := openArchiveFile(unpackInput, opts)
	if err != nil {
		return err
	}
	defer archive.Close()

	ids := archive.List()
	bar := newCountBar(len(ids), "Unpacking")
	defer barFinish(bar)

	for _, id := range ids {
		target, err := safepath.Join(unpackOutput, id)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		f, err := os.Create(target)
		if err != nil {
			return err
		}
		_, err = archive.FetchInto(id, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("extracting %q: %w", id, err)
		}
		barAdd(bar)
	}

	fmt.Fprintf(os.Stderr, "Unpacked %d entries into %s\n", len(ids), unpackOutput)
	return nil
}
