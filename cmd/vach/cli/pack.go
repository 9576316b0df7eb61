package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zeskeertwee/vach"
)

var (
	packOutput    string
	packInputs    []string
	packDirs      []string
	packDirsRec   []string
	packExcludes  []string
	packKeypair   string
	packSecret    string
	packCompress  string
	packAlgorithm string
	packSign      bool
	packEncrypt   bool
	packFlags     uint32
	packMagic     string
	packVersion   uint8
	packJobs      int
	packTruncate  bool
	packSortOrder string
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack files into a .vach archive",
	Long: `Pack collects the given files and directories into a sealed archive.

Identifiers are the file paths as given (directory entries become
"dir/file"). Compression, encryption, and signing apply to every leaf.

Examples:
  vach pack -o assets.vach -i logo.png -i theme.css
  vach pack -o assets.vach -r ./assets -x '*.tmp' -c detect -g lz4
  vach pack -o sealed.vach -d ./secrets -k keys.kp -e -a`,
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "Archive file to write (required)")
	packCmd.Flags().StringArrayVarP(&packInputs, "input", "i", nil, "File to pack; repeatable")
	packCmd.Flags().StringArrayVarP(&packDirs, "directory", "d", nil, "Directory whose files to pack; repeatable")
	packCmd.Flags().StringArrayVarP(&packDirsRec, "directory-r", "r", nil, "Directory to pack recursively; repeatable")
	packCmd.Flags().StringArrayVarP(&packExcludes, "exclude", "x", nil, "Glob pattern of paths to skip; repeatable")
	packCmd.Flags().StringVarP(&packKeypair, "keypair", "k", "", "Keypair file (*.kp)")
	packCmd.Flags().StringVarP(&packSecret, "secret", "s", "", "Secret key file (*.sk)")
	packCmd.Flags().StringVarP(&packCompress, "compress-mode", "c", "detect", "Compression policy: always, never, or detect")
	packCmd.Flags().StringVarP(&packAlgorithm, "compress-algo", "g", "lz4", "Compression algorithm: lz4, snappy, or brotli")
	packCmd.Flags().BoolVarP(&packSign, "hash", "a", false, "Sign every leaf")
	packCmd.Flags().BoolVarP(&packEncrypt, "encrypt", "e", false, "Encrypt every leaf")
	packCmd.Flags().Uint32VarP(&packFlags, "flags", "f", 0, "Caller flag bits for every leaf (low 16 bits)")
	packCmd.Flags().StringVarP(&packMagic, "magic", "m", "", "Archive magic (5 characters)")
	packCmd.Flags().Uint8Var(&packVersion, "version", 0, "Content version byte for every leaf")
	packCmd.Flags().IntVarP(&packJobs, "jobs", "j", 0, "Worker pool size (default: logical CPUs)")
	packCmd.Flags().BoolVarP(&packTruncate, "truncate", "t", false, "Delete the input files after a successful pack")
	packCmd.Flags().StringVar(&packSortOrder, "sort", "", "Leaf order: size-ascending, size-descending, alphabetical, or alphabetical-reversed")
	//nolint:errcheck // the flag is declared above
	packCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(packCmd)
}

func runPack(_ *cobra.Command, _ []string) error {
	keys, err := resolveKeys(packKeypair, packSecret, "")
	if err != nil {
		return err
	}
	mode, err := vach.ParseCompressMode(packCompress)
	if err != nil {
		return err
	}
	algo, err := vach.ParseCompressionAlgorithm(packAlgorithm)
	if err != nil {
		return err
	}
	magic, err := parseMagic(packMagic)
	if err != nil {
		return err
	}
	if packFlags&vach.ReservedMask != 0 {
		return fmt.Errorf("flag bits %#08x fall in the reserved mask %#08x", packFlags, vach.ReservedMask)
	}
	if (packSign || packEncrypt) && keys.secret == nil {
		return fmt.Errorf("signing and encryption need a secret key; pass -k or -s")
	}

	files, err := collectInputs()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to pack; pass -i, -d, or -r")
	}
	if err := sortInputs(files, packSortOrder); err != nil {
		return err
	}

	opts := []vach.BuilderOption{
		vach.WithMagic(magic),
		vach.WithBuilderLogger(logger()),
		vach.WithLeafDefaults(vach.Leaf{
			CompressMode:   mode,
			Compression:    algo,
			Encrypt:        packEncrypt,
			Sign:           packSign,
			ContentVersion: packVersion,
			Flags:          packFlags,
		}),
	}
	if keys.secret != nil {
		opts = append(opts, vach.WithSecretKey(keys.secret))
	}
	if packJobs > 0 {
		opts = append(opts, vach.WithWorkers(packJobs))
	}

	builder, err := vach.NewBuilder(opts...)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := builder.AddFile(f.id, f.path); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	bar := newCountBar(len(files), "Packing")
	var dropped []vach.ProgressEvent
	written, err := builder.DumpToFile(ctx, packOutput, func(event vach.ProgressEvent) {
		barAdd(bar)
		if event.Err != nil {
			dropped = append(dropped, event)
		}
	})
	barFinish(bar)
	if err != nil {
		return err
	}

	for _, event := range dropped {
		fmt.Fprintf(os.Stderr, "warning: dropped %s: %v\n", event.ID, event.Err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes, %d entries)\n", packOutput, written, len(files)-len(dropped))

	if packTruncate {
		return truncateInputs(files, dropped)
	}
	return nil
}

// packFile pairs an archive identifier with the path it is read from.
type packFile struct {
	id   string
	path string
	size int64
}

// collectInputs expands -i, -d, and -r into the leaf list, applying -x
// exclusion globs against the slash-separated identifier.
func collectInputs() ([]packFile, error) {
	var files []packFile
	seen := make(map[string]struct{})

	add := func(id, path string) error {
		id = filepath.ToSlash(id)
		excluded, err := isExcluded(id)
		if err != nil || excluded {
			return err
		}
		if _, dup := seen[id]; dup {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		seen[id] = struct{}{}
		files = append(files, packFile{id: id, path: path, size: info.Size()})
		return nil
	}

	for _, path := range packInputs {
		if err := add(path, path); err != nil {
			return nil, err
		}
	}

	for _, dir := range packDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			id := filepath.Join(filepath.Base(dir), entry.Name())
			if err := add(id, filepath.Join(dir, entry.Name())); err != nil {
				return nil, err
			}
		}
	}

	for _, dir := range packDirsRec {
		root := filepath.Clean(dir)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			return add(filepath.Join(filepath.Base(root), rel), path)
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func isExcluded(id string) (bool, error) {
	for _, pattern := range packExcludes {
		matched, err := filepath.Match(pattern, id)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		if matched || pattern == id {
			return true, nil
		}
		// Also match against the base name so "*.tmp" excludes nested files.
		if matched, _ := filepath.Match(pattern, filepath.Base(id)); matched {
			return true, nil
		}
	}
	return false, nil
}

// sortInputs orders leaves per --sort. The order is observable only
// through blob layout; identifiers address entries either way.
func sortInputs(files []packFile, order string) error {
	switch order {
	case "":
	case "size-ascending":
		sort.SliceStable(files, func(i, j int) bool { return files[i].size < files[j].size })
	case "size-descending":
		sort.SliceStable(files, func(i, j int) bool { return files[i].size > files[j].size })
	case "alphabetical":
		sort.SliceStable(files, func(i, j int) bool { return files[i].id < files[j].id })
	case "alphabetical-reversed":
		sort.SliceStable(files, func(i, j int) bool { return files[i].id > files[j].id })
	default:
		return fmt.Errorf("unknown sort %q; valid sorts are size-ascending, size-descending, alphabetical, alphabetical-reversed", order)
	}
	return nil
}

// truncateInputs deletes the source files of every leaf that made it into
// the archive.
func truncateInputs(files []packFile, dropped []vach.ProgressEvent) error {
	droppedIDs := make(map[string]struct{}, len(dropped))
	for _, event := range dropped {
		droppedIDs[event.ID] = struct{}{}
	}
	for _, f := range files {
		if _, wasDropped := droppedIDs[f.id]; wasDropped {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("truncating %s: %w", f.path, err)
		}
	}
	return nil
}
