package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach"
)

var (
	verifyInput   string
	verifyKeypair string
	verifyPublic  string
	verifyMagic   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signatures of an archive",
	Long: `Verify fetches every signed entry and checks its detached signature.
The public key comes from -p or -k, falling back to the key embedded in
the archive header. Exits non-zero if any signature fails.

Examples:
  vach verify -i assets.vach
  vach verify -i assets.vach -p release.pk`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "Archive file to read (required)")
	verifyCmd.Flags().StringVarP(&verifyKeypair, "keypair", "k", "", "Keypair file (*.kp)")
	verifyCmd.Flags().StringVarP(&verifyPublic, "public", "p", "", "Public key file (*.pk)")
	verifyCmd.Flags().StringVarP(&verifyMagic, "magic", "m", "", "Archive magic (5 characters)")
	//nolint:errcheck // the flag is declared above
	verifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	keys, err := resolveKeys(verifyKeypair, "", verifyPublic)
	if err != nil {
		return err
	}
	opts, err := archiveOptions(verifyMagic, keys)
	if err != nil {
		return err
	}

	archive, err := openArchiveFile(verifyInput, opts)
	if err != nil {
		return err
	}
	defer archive.Close()

	signed, failed := 0, 0
	for _, entry := range archive.Entries() {
		if !entry.Flags.Contains(vach.FlagSigned) {
			continue
		}
		signed++

		res, err := archive.Fetch(entry.ID)
		if err != nil {
			return fmt.Errorf("fetching %q: %w", entry.ID, err)
		}
		if res.Verified {
			fmt.Printf("ok    %s\n", entry.ID)
		} else {
			failed++
			fmt.Printf("FAIL  %s\n", entry.ID)
		}
	}

	if signed == 0 {
		fmt.Fprintln(os.Stderr, "archive has no signed entries")
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d signatures failed", vach.ErrCrypto, failed, signed)
	}
	fmt.Fprintf(os.Stderr, "All %d signatures verified\n", signed)
	return nil
}
