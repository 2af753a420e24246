//go:build property

package hash

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDigestProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("digest is deterministic", prop.ForAll(
		func(content []byte) bool {
			return Digest(content) == Digest(content)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("digest is 16 lowercase hex characters", prop.ForAll(
		func(content []byte) bool {
			digest := Digest(content)
			if len(digest) != 16 {
				return false
			}
			for _, c := range digest {
				if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
