package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cmsauth/internal/common"
	"golang.org/x/crypto/argon2"
)

// Bounds applied to parameters read back from a stored hash, so a corrupted
// row cannot make a single login allocate unbounded memory.
const (
	maxMemoryKiB  = 1024 * 1024
	maxIterations = 64
	minSaltLength = 8
	minKeyLength  = 16
)

// randRead is a seam for tests.
var randRead = rand.Read

// HashParams are the argon2id cost parameters. Memory is in KiB.
type HashParams struct {
	Memory     uint32
	Iterations uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultHashParams returns m=64MiB, t=1, p=4 with a 16-byte salt and a
// 32-byte digest.
func DefaultHashParams() HashParams {
	return HashParams{Memory: 64 * 1024, Iterations: 1, Threads: 4, SaltLength: 16, KeyLength: 32}
}

func (p HashParams) validate() error {
	switch {
	case p.Iterations == 0 || p.Iterations > maxIterations:
		return fmt.Errorf("iterations %d out of range", p.Iterations)
	case p.Threads == 0:
		return fmt.Errorf("threads must be positive")
	case p.Memory < 8*uint32(p.Threads) || p.Memory > maxMemoryKiB:
		return fmt.Errorf("memory %d KiB out of range", p.Memory)
	case p.SaltLength < minSaltLength:
		return fmt.Errorf("salt length %d too short", p.SaltLength)
	case p.KeyLength < minKeyLength:
		return fmt.Errorf("key length %d too short", p.KeyLength)
	}
	return nil
}

// Hasher hashes and verifies passwords with argon2id. The encoded form is
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
//
// with unpadded standard base64, so verification needs nothing but the
// string itself.
type Hasher struct {
	params HashParams
}

func NewHasher(params HashParams) *Hasher {
	return &Hasher{params: params}
}

// Hash derives a new encoded hash of plaintext under a fresh random salt.
// The byte copy of plaintext is wiped before Hash returns.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if err := h.params.validate(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("%w: salt: %v", common.ErrHashing, err)
	}

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	key := argon2.IDKey(pw, salt, h.params.Iterations, h.params.Memory, h.params.Threads, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches encoded. A mismatch is
// (false, nil); only an unparsable encoding is an error.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrVerification, err)
	}

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	got := argon2.IDKey(pw, salt, params.Iterations, params.Memory, params.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	var p HashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("expected 5 sections, got %d", len(parts)-1)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported variant %q", parts[1])
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("unsupported version %q", parts[2])
	}

	if err := parseParams(parts[3], &p); err != nil {
		return p, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("salt: %v", err)
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("digest: %v", err)
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	if err := p.validate(); err != nil {
		return p, nil, nil, err
	}
	return p, salt, key, nil
}

// parseParams reads exactly "m=<uint>,t=<uint>,p=<uint>".
func parseParams(s string, p *HashParams) error {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return fmt.Errorf("malformed parameters %q", s)
	}

	values := make([]uint64, 3)
	for i, name := range []string{"m", "t", "p"} {
		k, v, ok := strings.Cut(fields[i], "=")
		if !ok || k != name {
			return fmt.Errorf("malformed parameter %q", fields[i])
		}
		bits := 32
		if name == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(v, 10, bits)
		if err != nil {
			return fmt.Errorf("parameter %s: %v", name, err)
		}
		values[i] = n
	}

	p.Memory = uint32(values[0])
	p.Iterations = uint32(values[1])
	p.Threads = uint8(values[2])
	return nil
}
