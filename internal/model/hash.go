package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainComponent prefixes component fingerprints.
// The version suffix allows the algorithm to change later.
const DomainComponent = "ffigen/component/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a component.
// Two components with the same members, in the same order, with the same
// types share a fingerprint; doc comments are excluded.
func Fingerprint(c *Component) (string, error) {
	canonical, err := MarshalCanonical(c.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainComponent, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the component is known to be valid.
func MustFingerprint(c *Component) string {
	fp, err := Fingerprint(c)
	if err != nil {
		panic(err)
	}
	return fp
}
