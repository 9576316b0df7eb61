package cli

import (
	"github.com/spf13/cobra"
)

var splitInput string

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a keypair file into its secret and public halves",
	Long: `Split reads an existing *.kp file and writes the *.sk and *.pk files
next to it.

Example:
  vach split -i release.kp`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitInput, "input", "i", "", "Keypair file to split (required)")
	//nolint:errcheck // the flag is declared above
	splitCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(_ *cobra.Command, _ []string) error {
	kp, err := loadKeypairFile(splitInput)
	if err != nil {
		return err
	}
	return writeSplitKeypair(keyBasePath(splitInput), kp)
}
