package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := svc.Hash("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, svc.Verify(hash, "password123"))
	assert.False(t, svc.Verify(hash, "password124"))
	assert.False(t, svc.Verify(hash, ""))
}

func TestPasswordService_SaltedHashesDiffer(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	first, err := svc.Hash("same-password")
	assert.NoError(t, err)
	second, err := svc.Hash("same-password")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, svc.Verify(first, "same-password"))
	assert.True(t, svc.Verify(second, "same-password"))
}

func TestPasswordService_LongPasswordTruncation(t *testing.T) {
	svc := NewPasswordServiceWithCost(bcrypt.MinCost)

	long := strings.Repeat("a", 100)
	hash, err := svc.Hash(long)
	assert.NoError(t, err)

	// The same over-long password verifies because the same 72-byte prefix is
	// used on both sides.
	assert.True(t, svc.Verify(hash, long))

	// Any password sharing the first 72 bytes is equivalent after truncation.
	samePrefix := strings.Repeat("a", 72) + strings.Repeat("z", 30)
	assert.True(t, svc.Verify(hash, samePrefix))

	// A differing byte inside the first 72 still fails.
	differentPrefix := strings.Repeat("a", 71) + "b" + strings.Repeat("a", 28)
	assert.False(t, svc.Verify(hash, differentPrefix))
}
