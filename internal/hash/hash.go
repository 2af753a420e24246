// Package hash provides content addressing for build artifacts. Output
// filenames embed a digest of the artifact's content so that any change to the
// content changes the published name (cache busting).
package hash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Digest computes the xxHash64 of data and returns it as a hex string.
// The digest is chosen for speed and uniqueness, not cryptographic strength;
// collisions between distinct contents are not a guarded case.
func Digest(data []byte) string {
	sum := xxhash.Sum64(data)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sum)
	return hex.EncodeToString(buf[:])
}

// ArtifactName builds the published filename for an artifact:
// {page}.{digest}.{ext}. ext is given without a leading dot.
func ArtifactName(page, digest, ext string) string {
	return fmt.Sprintf("%s.%s.%s", page, digest, ext)
}
