package ft8

// Tone-sequence framing: assembles an LDPC-encoded, CRC-protected payload into the
// Costas-synchronized tone sequence transmitted on the air, and the inverse
// extraction used by the decoder's symbol-likelihood stage.

// EncodeTones packs payload into a full protocol-specific tone sequence: CRC,
// systematic LDPC(174,91) encode, FT4 scrambling where applicable, then Gray-coded
// tone mapping spliced with the Costas sync patterns.
func EncodeTones(payload [10]uint8, protocol Protocol) []uint8 {
	scrambled := payload
	if protocol == ProtocolFT4 {
		for i := 0; i < len(FT4XORSequence) && i < 10; i++ {
			scrambled[i] ^= FT4XORSequence[i]
		}
	}

	a91 := AddCRC(scrambled)
	codeword := Encode174(a91)
	bits := unpackCodewordBits(codeword)

	if protocol == ProtocolFT4 {
		return assembleFT4Tones(bits)
	}
	return assembleFT8Tones(bits)
}

func unpackCodewordBits(codeword [LDPCNBytes]uint8) []uint8 {
	bits := make([]uint8, LDPCN)
	for i := 0; i < LDPCN; i++ {
		bits[i] = (codeword[i/8] >> (7 - uint(i%8))) & 0x01
	}
	return bits
}

func assembleFT8Tones(bits []uint8) []uint8 {
	tones := make([]uint8, FT8NN)
	bitIdx := 0
	symIdx := 0
	for block := 0; block < FT8NumSync; block++ {
		copy(tones[symIdx:symIdx+FT8LengthSync], Costas7x7[:])
		symIdx += FT8LengthSync
		if block < FT8NumSync-1 {
			for i := 0; i < 29; i++ {
				b3 := bits[bitIdx]<<2 | bits[bitIdx+1]<<1 | bits[bitIdx+2]
				bitIdx += 3
				tones[symIdx] = GrayMap8[b3]
				symIdx++
			}
		}
	}
	return tones
}

func assembleFT4Tones(bits []uint8) []uint8 {
	tones := make([]uint8, FT4NN)
	tones[0] = 0 // leading ramp symbol, carries no information
	symIdx := 1
	bitIdx := 0
	for block := 0; block < FT4NumSync; block++ {
		copy(tones[symIdx:symIdx+FT4LengthSync], Costas4x4[block][:])
		symIdx += FT4LengthSync
		if block < FT4NumSync-1 {
			for i := 0; i < 29; i++ {
				b2 := bits[bitIdx]<<1 | bits[bitIdx+1]
				bitIdx += 2
				tones[symIdx] = GrayMap4[b2]
				symIdx++
			}
		}
	}
	tones[FT4NN-1] = 0 // trailing ramp symbol
	return tones
}
