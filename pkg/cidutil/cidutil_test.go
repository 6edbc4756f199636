package cidutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidenceCID(t *testing.T) {
	a := EvidenceCID("Verified business registration")
	b := EvidenceCID("Verified business registration")
	c := EvidenceCID("Verified business registration.")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "b"), "CIDv1 defaults to base32 multibase")
	assert.Empty(t, EvidenceCID(""))
}

func TestVerify(t *testing.T) {
	data := []byte("evidence")
	assert.True(t, Verify(CIDv1RawSHA256(data), data))
	assert.False(t, Verify(CIDv1RawSHA256(data), []byte("other")))
	assert.False(t, Verify("not-a-cid", data))
}
