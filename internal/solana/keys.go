package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte Solana public key.
type Pubkey [32]byte

// ParsePubkey decodes a base58 public key.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode pubkey: %w", err)
	}
	if len(raw) != 32 {
		return pk, fmt.Errorf("pubkey must be 32 bytes, got %d", len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey parses a base58 public key and panics on failure.
// Use only for compile-time constants like program IDs.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 encoding.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether the key is all zeroes.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Keypair is an ed25519 signing keypair for a custodial wallet.
type Keypair struct {
	priv ed25519.PrivateKey
	pub  Pubkey
}

// ParseKeypair decodes a base58-encoded 64-byte keypair (seed ||
// public key, the Solana wallet export format) and verifies the
// embedded public key matches the private half. A mismatch indicates a
// corrupted stored credential.
func ParseKeypair(s string) (*Keypair, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode keypair: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key")
	}

	var pk Pubkey
	copy(pk[:], pub)
	if !equalBytes(raw[32:], pub) {
		return nil, errors.New("keypair public half does not match private half")
	}

	return &Keypair{priv: priv, pub: pk}, nil
}

// Pubkey returns the wallet public key.
func (k *Keypair) Pubkey() Pubkey {
	return k.pub
}

// Address returns the base58 wallet address.
func (k *Keypair) Address() string {
	return k.pub.String()
}

// Sign signs a message with the private key.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsOnCurve reports whether b is a valid ed25519 curve point. Program
// derived addresses are required to be off-curve.
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// ErrNoViableBump is returned when no off-curve PDA exists for the
// given seeds (practically unreachable).
var ErrNoViableBump = errors.New("unable to find a viable program address bump")

// FindProgramAddress derives the canonical program derived address for
// the given seeds, walking bump seeds from 255 down until the result
// falls off the curve.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID[:])
		h.Write([]byte("ProgramDerivedAddress"))

		var candidate Pubkey
		copy(candidate[:], h.Sum(nil))
		if !IsOnCurve(candidate[:]) {
			return candidate, uint8(bump), nil
		}
	}
	return Pubkey{}, 0, ErrNoViableBump
}

// FindAssociatedTokenAddress derives the associated token account for
// (wallet, mint) under the given token program.
func FindAssociatedTokenAddress(wallet, mint, tokenProgram Pubkey) (Pubkey, error) {
	addr, _, err := FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		MustPubkey(AssociatedTokenProgramID),
	)
	if err != nil {
		return Pubkey{}, err
	}
	return addr, nil
}
