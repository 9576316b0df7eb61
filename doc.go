// Package vach reads and writes .vach archives: sealed containers of named
// byte resources with per-leaf compression, authenticated encryption, and
// detached ed25519 signatures.
//
// An archive is built in one forward pass and read with random access: the
// registry at the front of the file locates every blob, so fetching one
// resource never decodes the rest.
//
// # Writing
//
// Create a builder, queue leaves, and dump:
//
//	b, err := vach.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b.AddBytes("config.toml", configBytes)
//	b.AddFile("textures/grass.png", "assets/grass.png")
//
//	written, err := b.DumpToFile(ctx, "assets.vach", nil)
//
// Compression, encryption, and signing are configured per leaf; builder
// options supply the key material and defaults:
//
//	kp, _ := vach.GenerateKeypair()
//	b, _ := vach.NewBuilder(
//	    vach.WithSecretKey(kp.Secret),
//	    vach.WithLeafDefaults(vach.Leaf{CompressMode: vach.CompressDetect, Sign: true}),
//	)
//
// # Reading
//
// Open an archive and fetch resources by identifier:
//
//	a, err := vach.OpenFile("assets.vach", vach.WithPublicKey(kp.Public))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	res, err := a.Fetch("config.toml")
//
// Fetch requires exclusive access to the archive; FetchLocked serializes
// concurrent callers on an internal mutex. Both return a detached Resource
// the caller owns.
//
// # Keys
//
// One ed25519 keypair covers signing and encryption: signatures use the
// key directly, and the AEAD key is derived deterministically from the
// secret. GenerateKeypair, LoadKeypair, and the *.kp/*.sk/*.pk helpers
// manage key material on disk.
package vach
