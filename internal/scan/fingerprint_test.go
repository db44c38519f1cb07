package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdeans2217/canvas-parent-cli/internal/scan"
)

func TestFingerprint(t *testing.T) {
	// Known SHA-256 vector.
	assert.Equal(t,
		scan.ContentFingerprint("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"),
		scan.Fingerprint([]byte("abc")),
	)

	// Same bytes, same fingerprint; any change flips it.
	a := scan.Fingerprint([]byte("scan bytes"))
	b := scan.Fingerprint([]byte("scan bytes"))
	c := scan.Fingerprint([]byte("scan bytes!"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIsDuplicate(t *testing.T) {
	fp := scan.Fingerprint([]byte("already processed"))
	known := map[string]struct{}{string(fp): {}}

	assert.True(t, scan.IsDuplicate(fp, known))
	assert.False(t, scan.IsDuplicate(scan.Fingerprint([]byte("fresh")), known))
	assert.False(t, scan.IsDuplicate(fp, nil))
}
