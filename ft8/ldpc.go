package ft8

// LDPC(174,91) systematic encode and belief-propagation decode.
// Ported from ft8_lib-style bpDecode, adapted to the tables in ldpc_tables.go.

// Encode174 produces the 174-bit codeword for a 91-bit message (12-byte buffer,
// only the first 91 bits used). The first 91 bits of the codeword equal the
// message; the remaining 83 are systematic parity bits.
func Encode174(message [12]uint8) [LDPCNBytes]uint8 {
	var codeword [LDPCNBytes]uint8
	copy(codeword[:12], message[:])
	codeword[11] &= 0xE0

	for i := 0; i < LDPCM; i++ {
		nsum := 0
		for j := 0; j < 12; j++ {
			nsum ^= parity8(message[j] & ldpcGen[i][j])
		}
		if nsum != 0 {
			bitPos := LDPCK + i
			codeword[bitPos/8] |= 1 << (7 - uint(bitPos%8))
		}
	}
	return codeword
}

func parity8(x uint8) int {
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return int(x & 1)
}

// LDPCDecode runs belief propagation over 174 log-likelihood ratios and returns the
// hard-decision bits plus the minimum observed parity-error count (0 = success).
func LDPCDecode(codeword []float32, maxIters int) ([]uint8, int) {
	return bpDecode(codeword, maxIters)
}

func bpDecode(codeword []float32, maxIters int) ([]uint8, int) {
	var tov [LDPCN][3]float32
	var toc [LDPCM][7]float32

	plain := make([]uint8, LDPCN)
	minErrors := LDPCM

	for iter := 0; iter < maxIters; iter++ {
		plainSum := 0
		for n := 0; n < LDPCN; n++ {
			sum := codeword[n] + tov[n][0] + tov[n][1] + tov[n][2]
			if sum > 0 {
				plain[n] = 1
			} else {
				plain[n] = 0
			}
			plainSum += int(plain[n])
		}

		// Degenerate early exit on the all-zeros hard decision, matching observed
		// reference behavior.
		if plainSum == 0 {
			break
		}

		errors := LDPCCheck(plain)
		if errors < minErrors {
			minErrors = errors
			if errors == 0 {
				break
			}
		}

		for m := 0; m < LDPCM; m++ {
			numRows := int(ldpcNumRows[m])
			for nIdx := 0; nIdx < numRows; nIdx++ {
				n := int(ldpcNM[m][nIdx]) - 1

				tnm := codeword[n]
				for mIdx := 0; mIdx < 3; mIdx++ {
					if int(ldpcMN[n][mIdx])-1 != m {
						tnm += tov[n][mIdx]
					}
				}
				toc[m][nIdx] = fastTanh(-tnm / 2.0)
			}
		}

		for n := 0; n < LDPCN; n++ {
			for mIdx := 0; mIdx < 3; mIdx++ {
				m := int(ldpcMN[n][mIdx]) - 1

				tmn := float32(1.0)
				numRows := int(ldpcNumRows[m])
				for nIdx := 0; nIdx < numRows; nIdx++ {
					if int(ldpcNM[m][nIdx])-1 != n {
						tmn *= toc[m][nIdx]
					}
				}
				tov[n][mIdx] = -2.0 * fastAtanh(tmn)
			}
		}
	}

	return plain, minErrors
}

// LDPCCheck returns the number of parity checks the given hard-decision codeword
// fails (0 = valid codeword).
func LDPCCheck(codeword []uint8) int {
	errors := 0
	for m := 0; m < LDPCM; m++ {
		x := uint8(0)
		numRows := int(ldpcNumRows[m])
		for i := 0; i < numRows; i++ {
			x ^= codeword[int(ldpcNM[m][i])-1]
		}
		if x != 0 {
			errors++
		}
	}
	return errors
}

// fastTanh is a fast rational-polynomial approximation of tanh, accurate enough
// for the belief-propagation message scaling.
func fastTanh(x float32) float32 {
	if x < -4.97 {
		return -1.0
	}
	if x > 4.97 {
		return 1.0
	}
	x2 := x * x
	a := x * (945.0 + x2*(105.0+x2))
	b := 945.0 + x2*(420.0+x2*15.0)
	return a / b
}

// fastAtanh is a fast rational-polynomial approximation of atanh for |x| < 1.
func fastAtanh(x float32) float32 {
	x2 := x * x
	a := x * (945.0 + x2*(-735.0+x2*64.0))
	b := 945.0 + x2*(-1050.0+x2*225.0)
	return a / b
}
