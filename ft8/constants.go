// Package ft8 implements the core encode/decode pipeline of the FT8 and FT4
// weak-signal digital modes: waterfall generation, Costas sync search, soft-decision
// LDPC(174,91) decoding, CRC-14, and 77-bit message packing/unpacking.
package ft8

// FT8 symbol structure: S D1 S D2 S
// S  - sync block (7 symbols of Costas pattern)
// D1 - first data block (29 symbols each encoding 3 bits)
// D2 - second data block (29 symbols each encoding 3 bits)
const (
	FT8ND          = 58 // Data symbols
	FT8NN          = 79 // Total channel symbols
	FT8LengthSync  = 7  // Length of each sync group
	FT8NumSync     = 3  // Number of sync groups
	FT8SyncOffset  = 36 // Offset between sync groups
)

// FT4 symbol structure: R Sa D1 Sb D2 Sc D3 Sd R
// R  - ramping symbol (no payload information)
// Sx - one of four different sync blocks (4 symbols of Costas pattern)
// Dy - data block (29 symbols each encoding 2 bits)
const (
	FT4ND         = 87  // Data symbols
	FT4NR         = 2   // Ramp symbols (beginning + end)
	FT4NN         = 105 // Total channel symbols
	FT4LengthSync = 4   // Length of each sync group
	FT4NumSync    = 4   // Number of sync groups
	FT4SyncOffset = 33  // Offset between sync groups
)

// LDPC parameters
const (
	LDPCN      = 174                // Number of bits in encoded message
	LDPCK      = 91                 // Number of payload bits (including CRC)
	LDPCM      = 83                 // Number of LDPC checksum bits
	LDPCNBytes = (LDPCN + 7) / 8    // Bytes needed for 174 bits
	LDPCKBytes = (LDPCK + 7) / 8    // Bytes needed for 91 bits
)

// CRC parameters
const (
	CRCPolynomial = 0x2757 // CRC-14 polynomial without leading 1
	CRCWidth      = 14
)

// Costas7x7 is the 7x7 tone pattern used for FT8 synchronization.
var Costas7x7 = [7]uint8{3, 1, 4, 0, 6, 5, 2}

// Costas4x4 holds the four distinct 4x4 tone patterns used for FT4 synchronization.
var Costas4x4 = [4][4]uint8{
	{0, 1, 3, 2},
	{1, 0, 2, 3},
	{2, 3, 1, 0},
	{3, 2, 0, 1},
}

// GrayMap8 is the Gray code map for the 8 FT8 tones.
var GrayMap8 = [8]uint8{0, 1, 3, 2, 5, 6, 4, 7}

// GrayMap4 is the Gray code map for the 4 FT4 tones.
var GrayMap4 = [4]uint8{0, 1, 3, 2}

// FT4XORSequence descrambles the FT4 payload after CRC verification.
var FT4XORSequence = [10]uint8{0, 0, 0, 1, 1, 0, 0, 1, 0, 1}

// Message packing constants (component D).
const (
	NTokens  = 2063592 // Number of special callsign tokens
	Max22    = 4194304 // 2^22, hashed-callsign space
	MaxGrid4 = 32400    // 18*10*18*10, standard 4-char grid space
)

// Protocol timing, frequency range and oversampling (component H/I).
const (
	FT8SlotTime    = 15.0  // seconds
	FT8SymbolTime  = 0.160 // seconds per symbol
	FT8SymbolCount = 79

	FT4SlotTime    = 7.5
	FT4SymbolTime  = 0.048
	FT4SymbolCount = 105

	FreqMin = 100  // Hz
	FreqMax = 3100 // Hz

	FreqOSR = 2 // Frequency oversampling rate
	TimeOSR = 2 // Time oversampling rate
)
