package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach"
)

var (
	listInput string
	listMagic string
	listSort  string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the entries of an archive",
	Long: `List prints one row per entry: identifier, stored size, flags, and
compression algorithm. Only the registry is read; blobs stay untouched.

Examples:
  vach list -i assets.vach
  vach list -i assets.vach --sort size-descending`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listInput, "input", "i", "", "Archive file to read (required)")
	listCmd.Flags().StringVarP(&listMagic, "magic", "m", "", "Archive magic (5 characters)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Row order: size-ascending, size-descending, alphabetical, or alphabetical-reversed")
	//nolint:errcheck // the flag is declared above
	listCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	opts, err := archiveOptions(listMagic, keyMaterial{})
	if err != nil {
		return err
	}

	archive, err := openArchiveFile(listInput, opts)
	if err != nil {
		return err
	}
	defer archive.Close()

	entries := archive.Entries()
	fmt.Println(archive)
	if len(entries) == 0 {
		return nil
	}
	if err := sortEntries(entries, listSort); err != nil {
		return err
	}

	printEntryTable(os.Stdout, entries)
	return nil
}

func sortEntries(entries []vach.Entry, order string) error {
	switch order {
	case "":
	case "size-ascending":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	case "size-descending":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Offset > entries[j].Offset })
	case "alphabetical":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	case "alphabetical-reversed":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	default:
		return fmt.Errorf("unknown sort %q; valid sorts are size-ascending, size-descending, alphabetical, alphabetical-reversed", order)
	}
	return nil
}

func printEntryTable(w io.Writer, entries []vach.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tsize\tflags\tcompression")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			entry.ID,
			humanize.Bytes(entry.Offset),
			entry.Flags,
			compressionName(entry))
	}
	//nolint:errcheck // writes to a buffered local writer
	tw.Flush()
}

func compressionName(entry vach.Entry) string {
	if !entry.Flags.Contains(vach.FlagCompressed) {
		return "none"
	}
	return entry.Flags.Algorithm().String()
}
