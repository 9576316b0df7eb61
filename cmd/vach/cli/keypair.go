package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach"
)

var (
	keypairOutput string
	keypairSplit  bool
)

var keypairCmd = &cobra.Command{
	Use:   "keypair",
	Short: "Generate a fresh ed25519 keypair",
	Long: `Keypair generates signing and encryption key material.

By default the pair is written as one *.kp file (secret seed followed by
public key). With --split, the halves land in separate *.sk and *.pk
files instead.

Examples:
  vach keypair -o release.kp
  vach keypair -o release --split`,
	RunE: runKeypair,
}

func init() {
	keypairCmd.Flags().StringVarP(&keypairOutput, "output", "o", "keypair.kp", "Destination file")
	keypairCmd.Flags().BoolVar(&keypairSplit, "split", false, "Write separate *.sk and *.pk files")
	rootCmd.AddCommand(keypairCmd)
}

func runKeypair(_ *cobra.Command, _ []string) error {
	kp, err := vach.GenerateKeypair()
	if err != nil {
		return err
	}

	if keypairSplit {
		return writeSplitKeypair(keyBasePath(keypairOutput), kp)
	}

	if err := writeKeyFile(keypairOutput, kp.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote keypair to %s\n", keypairOutput)
	return nil
}

func writeSplitKeypair(base string, kp *vach.Keypair) error {
	skPath, pkPath := base+".sk", base+".pk"

	if err := writeKeyFile(skPath, kp.Secret.Seed()); err != nil {
		return err
	}
	if err := writeKeyFile(pkPath, kp.Public); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote secret key to %s and public key to %s\n", skPath, pkPath)
	return nil
}
