// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package receipt computes verifiable vote receipts.
//
// A receipt is the SHA-256 digest of a canonical encoding of the vote's
// immutable fields plus a server-generated nonce. Every variable-length field
// is length-prefixed and the timestamp is fixed-width, so no two distinct
// field tuples share an encoding.
package receipt

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// NonceSize is the number of random bytes mixed into each receipt.
const NonceSize = 32

const domainTag = "ballot-core/receipt/v1"

// Fields are the immutable vote fields a receipt commits to.
type Fields struct {
	ElectionID  string
	CandidateID string
	VoterID     string
	SubmittedAt time.Time
	Nonce       []byte
}

// Hash returns the 64-character lowercase hex receipt digest.
func Hash(f Fields) string {
	sum := sha256.Sum256(Encode(f))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it in constant time.
func Verify(f Fields, digest string) bool {
	expected := Hash(f)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}

// Encode is the canonical byte encoding hashed by Hash.
// Timestamps are committed at microsecond precision, the precision votes are stored at.
func Encode(f Fields) []byte {
	size := 4*5 + len(domainTag) + len(f.ElectionID) + len(f.CandidateID) + len(f.VoterID) + 8 + len(f.Nonce)
	buf := make([]byte, 0, size)
	buf = appendBytes(buf, []byte(domainTag))
	buf = appendBytes(buf, []byte(f.ElectionID))
	buf = appendBytes(buf, []byte(f.CandidateID))
	buf = appendBytes(buf, []byte(f.VoterID))
	buf = binary.BigEndian.AppendUint64(buf, uint64(f.SubmittedAt.UnixMicro()))
	buf = appendBytes(buf, f.Nonce)
	return buf
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

// NewNonce returns NonceSize bytes from crypto/rand.
func NewNonce() ([]byte, error) {
	b := make([]byte, NonceSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate receipt nonce: %w", err)
	}
	return b, nil
}
