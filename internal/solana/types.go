package solana

// Well-known program IDs.
const (
	SystemProgramID          = "11111111111111111111111111111111"
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

// SolToLamports converts a SOL amount to lamports, truncating.
func SolToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * LamportsPerSol)
}

// LamportsToSol converts lamports to a SOL amount.
func LamportsToSol(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSol
}

// TokenAccount is a parsed SPL token account.
type TokenAccount struct {
	Address  string // token account address
	Program  string // owning token program (legacy or 2022)
	Owner    string // wallet that owns the account
	Mint     string
	Amount   uint64 // raw amount
	Decimals uint8
	UIAmount float64 // human-readable amount
}

// TokenBalance is one entry from getTokenLargestAccounts.
type TokenBalance struct {
	Address  string // token account address
	Amount   uint64
	Decimals uint8
	UIAmount float64
}

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	Signature          string
	ConfirmationStatus string // processed | confirmed | finalized
	Err                interface{}
}

// Confirmed reports whether the transaction reached at least
// "confirmed" commitment without a transaction error.
func (s *SignatureStatus) Confirmed() bool {
	if s == nil || s.Err != nil {
		return false
	}
	return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
	RentEpoch  uint64
}
