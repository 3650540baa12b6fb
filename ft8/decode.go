package ft8

// Per-candidate decode: LDPC decode, CRC verification, and FT4 descrambling for
// one Costas sync candidate.

// DecodeStatus reports the outcome of attempting to decode one candidate,
// including the intermediate values useful for diagnostics and SNR estimation.
type DecodeStatus struct {
	LDPCErrors    int
	CRCExtracted  uint16
	CRCCalculated uint16
	Frequency     float32
	Time          float32
	Codeword      []uint8
}

// Message is a decoded, CRC-verified 77-bit payload.
type Message struct {
	Payload [10]uint8
	Hash    uint16
}

// DecodeCandidate extracts soft bits at cand's position, runs LDPC belief
// propagation, and verifies the CRC. ok is false on either an uncorrected LDPC
// codeword or a CRC mismatch.
func DecodeCandidate(wf *Waterfall, cand *Candidate, protocol Protocol, maxIterations int) (*Message, *DecodeStatus, bool) {
	status := &DecodeStatus{}

	symbolPeriod := protocol.SymbolTime()
	status.Frequency = float32(GetCandidateFrequency(wf, cand, symbolPeriod))
	status.Time = float32(GetCandidateTime(wf, cand, symbolPeriod))

	log174 := ExtractLikelihood(wf, cand, protocol)

	plain174, ldpcErrors := LDPCDecode(log174, maxIterations)
	status.LDPCErrors = ldpcErrors
	status.Codeword = plain174

	if ldpcErrors > 0 {
		return nil, status, false
	}

	a91 := PackBits(plain174[:LDPCK], LDPCK)

	status.CRCExtracted = ExtractCRC(a91)

	// The CRC covers the source-encoded message zero-extended from 77 to 82 bits.
	a91[9] &= 0xF8
	a91[10] &= 0x00
	status.CRCCalculated = ComputeCRC(a91, 96-14)

	if status.CRCExtracted != status.CRCCalculated {
		return nil, status, false
	}

	message := &Message{Hash: status.CRCCalculated}
	if protocol == ProtocolFT4 {
		for i := 0; i < 10; i++ {
			message.Payload[i] = a91[i] ^ FT4XORSequence[i]
		}
	} else {
		copy(message.Payload[:], a91[:10])
	}

	return message, status, true
}
