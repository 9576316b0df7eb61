package cli

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/zeskeertwee/vach"
)

// keyMaterial is the resolved result of the -k/-s/-p flags.
type keyMaterial struct {
	secret ed25519.PrivateKey
	public ed25519.PublicKey
}

// resolveKeys loads key material from the keypair, secret, and public key
// flags. A keypair file supplies both halves; explicit -s/-p files win
// over the corresponding keypair half.
func resolveKeys(keypairPath, secretPath, publicPath string) (keyMaterial, error) {
	var keys keyMaterial

	if keypairPath != "" {
		kp, err := loadKeypairFile(keypairPath)
		if err != nil {
			return keys, err
		}
		keys.secret = kp.Secret
		keys.public = kp.Public
	}

	if secretPath != "" {
		f, err := os.Open(secretPath)
		if err != nil {
			return keys, err
		}
		keys.secret, err = vach.LoadSecretKey(f)
		f.Close()
		if err != nil {
			return keys, fmt.Errorf("loading secret key %s: %w", secretPath, err)
		}
	}

	if publicPath != "" {
		f, err := os.Open(publicPath)
		if err != nil {
			return keys, err
		}
		keys.public, err = vach.LoadPublicKey(f)
		f.Close()
		if err != nil {
			return keys, fmt.Errorf("loading public key %s: %w", publicPath, err)
		}
	}

	return keys, nil
}

func loadKeypairFile(path string) (*vach.Keypair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kp, err := vach.LoadKeypair(f)
	if err != nil {
		return nil, fmt.Errorf("loading keypair %s: %w", path, err)
	}
	return kp, nil
}

// writeKeyFile writes key material with owner-only permissions.
func writeKeyFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

// keyBasePath strips a trailing .kp extension so split key files land
// next to the keypair.
func keyBasePath(path string) string {
	return strings.TrimSuffix(path, ".kp")
}

// openArchiveFile opens an archive with friendlier diagnostics for a
// missing path.
func openArchiveFile(path string, opts []vach.ArchiveOption) (*vach.Archive, error) {
	archive, err := vach.OpenFile(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	return archive, nil
}

// archiveOptions assembles the archive options shared by the reading
// subcommands.
func archiveOptions(magic string, keys keyMaterial) ([]vach.ArchiveOption, error) {
	m, err := parseMagic(magic)
	if err != nil {
		return nil, err
	}
	opts := []vach.ArchiveOption{
		vach.WithExpectedMagic(m),
		vach.WithArchiveLogger(logger()),
	}
	if keys.public != nil {
		opts = append(opts, vach.WithPublicKey(keys.public))
	}
	if keys.secret != nil {
		opts = append(opts, vach.WithDecryptionKey(keys.secret))
	}
	return opts, nil
}
