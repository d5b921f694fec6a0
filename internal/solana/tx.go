package solana

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is one compiled-to-be instruction of a legacy
// transaction message.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// NewTransferInstruction creates a System Program SOL transfer.
func NewTransferInstruction(from, to Pubkey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2) // Transfer
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Instruction{
		ProgramID: MustPubkey(SystemProgramID),
		Accounts: []AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

// NewBurnInstruction creates an SPL token Burn for the given token
// program (legacy or 2022, both share the instruction layout).
func NewBurnInstruction(tokenProgram, account, mint, owner Pubkey, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = 8 // Burn
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return Instruction{
		ProgramID: tokenProgram,
		Accounts: []AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: mint, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: data,
	}
}

// compiledKey is an account key with merged signer/writable flags.
type compiledKey struct {
	pubkey   Pubkey
	signer   bool
	writable bool
}

// BuildTransaction compiles instructions into a signed legacy
// transaction. The payer is placed first and must be among signers.
// Returns the wire-format transaction bytes and the base58 signature
// of the payer (the transaction ID).
func BuildTransaction(blockhash string, payer Pubkey, instructions []Instruction, signers []*Keypair) ([]byte, string, error) {
	if len(instructions) == 0 {
		return nil, "", errors.New("no instructions")
	}

	recent, err := base58.Decode(blockhash)
	if err != nil || len(recent) != 32 {
		return nil, "", fmt.Errorf("invalid blockhash %q", blockhash)
	}

	keys := compileKeys(payer, instructions)
	msg, err := serializeMessage(keys, recent, instructions)
	if err != nil {
		return nil, "", err
	}

	numSigners := 0
	for _, k := range keys {
		if k.signer {
			numSigners++
		}
	}

	// Signatures in account-key order.
	sigs := make([][]byte, numSigners)
	for i := 0; i < numSigners; i++ {
		kp := findSigner(signers, keys[i].pubkey)
		if kp == nil {
			return nil, "", fmt.Errorf("missing signer for %s", keys[i].pubkey)
		}
		sigs[i] = kp.Sign(msg)
	}

	var tx []byte
	tx = appendShortvec(tx, len(sigs))
	for _, sig := range sigs {
		tx = append(tx, sig...)
	}
	tx = append(tx, msg...)

	return tx, base58.Encode(sigs[0]), nil
}

// compileKeys collects unique account keys in canonical order:
// writable signers (payer first), readonly signers, writable
// non-signers, readonly non-signers, program IDs last.
func compileKeys(payer Pubkey, instructions []Instruction) []compiledKey {
	merged := map[Pubkey]*compiledKey{
		payer: {pubkey: payer, signer: true, writable: true},
	}
	var order []Pubkey
	order = append(order, payer)

	add := func(pk Pubkey, signer, writable bool) {
		k, ok := merged[pk]
		if !ok {
			k = &compiledKey{pubkey: pk}
			merged[pk] = k
			order = append(order, pk)
		}
		k.signer = k.signer || signer
		k.writable = k.writable || writable
	}

	for _, ins := range instructions {
		for _, m := range ins.Accounts {
			add(m.Pubkey, m.IsSigner, m.IsWritable)
		}
	}
	for _, ins := range instructions {
		add(ins.ProgramID, false, false)
	}

	var out []compiledKey
	appendClass := func(signer, writable bool) {
		for _, pk := range order {
			k := merged[pk]
			if k.signer == signer && k.writable == writable {
				out = append(out, *k)
			}
		}
	}
	appendClass(true, true)
	appendClass(true, false)
	appendClass(false, true)
	appendClass(false, false)
	return out
}

func serializeMessage(keys []compiledKey, recent []byte, instructions []Instruction) ([]byte, error) {
	index := make(map[Pubkey]int, len(keys))
	for i, k := range keys {
		index[k.pubkey] = i
	}

	var numSigned, numReadonlySigned, numReadonlyUnsigned int
	for _, k := range keys {
		if k.signer {
			numSigned++
			if !k.writable {
				numReadonlySigned++
			}
		} else if !k.writable {
			numReadonlyUnsigned++
		}
	}

	var msg []byte
	msg = append(msg, byte(numSigned), byte(numReadonlySigned), byte(numReadonlyUnsigned))
	msg = appendShortvec(msg, len(keys))
	for _, k := range keys {
		msg = append(msg, k.pubkey[:]...)
	}
	msg = append(msg, recent...)

	msg = appendShortvec(msg, len(instructions))
	for _, ins := range instructions {
		progIdx, ok := index[ins.ProgramID]
		if !ok {
			return nil, fmt.Errorf("program %s not in account keys", ins.ProgramID)
		}
		msg = append(msg, byte(progIdx))
		msg = appendShortvec(msg, len(ins.Accounts))
		for _, m := range ins.Accounts {
			ai, ok := index[m.Pubkey]
			if !ok {
				return nil, fmt.Errorf("account %s not in account keys", m.Pubkey)
			}
			msg = append(msg, byte(ai))
		}
		msg = appendShortvec(msg, len(ins.Data))
		msg = append(msg, ins.Data...)
	}

	return msg, nil
}

func findSigner(signers []*Keypair, pk Pubkey) *Keypair {
	for _, s := range signers {
		if s.Pubkey() == pk {
			return s
		}
	}
	return nil
}

// SignWireTransaction signs a pre-built unsigned wire transaction
// (as returned by platform trade APIs) with kp, filling the first
// signature slot. Returns the signed bytes and the base58 signature.
func SignWireTransaction(raw []byte, kp *Keypair) ([]byte, string, error) {
	numSigs, consumed, err := decodeShortvec(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signature count: %w", err)
	}
	if numSigs < 1 {
		return nil, "", errors.New("transaction has no signature slots")
	}

	msgStart := consumed + numSigs*64
	if len(raw) <= msgStart {
		return nil, "", errors.New("transaction truncated")
	}

	sig := kp.Sign(raw[msgStart:])
	signed := make([]byte, len(raw))
	copy(signed, raw)
	copy(signed[consumed:consumed+64], sig)
	return signed, base58.Encode(sig), nil
}

// appendShortvec appends a compact-u16 length prefix.
func appendShortvec(b []byte, n int) []byte {
	for {
		if n < 0x80 {
			return append(b, byte(n))
		}
		b = append(b, byte(n&0x7f)|0x80)
		n >>= 7
	}
}

// decodeShortvec decodes a compact-u16 prefix, returning the value and
// the number of bytes consumed.
func decodeShortvec(b []byte) (int, int, error) {
	var value, shift, consumed int
	for {
		if consumed >= len(b) || consumed > 2 {
			return 0, 0, errors.New("invalid compact-u16")
		}
		cur := b[consumed]
		value |= int(cur&0x7f) << shift
		consumed++
		if cur&0x80 == 0 {
			return value, consumed, nil
		}
		shift += 7
	}
}
