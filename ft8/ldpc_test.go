package ft8

import "testing"

func TestEncode174ProducesValidCodeword(t *testing.T) {
	messages := [][12]uint8{
		{},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF8},
		{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0, 0x11, 0x22, 0x33, 0x40},
	}

	for _, msg := range messages {
		codeword := Encode174(msg)

		plain := make([]uint8, LDPCN)
		for i := 0; i < LDPCN; i++ {
			plain[i] = (codeword[i/8] >> (7 - uint(i%8))) & 0x01
		}

		if errs := LDPCCheck(plain); errs != 0 {
			t.Errorf("Encode174(%v): LDPCCheck found %d parity errors, want 0", msg, errs)
		}

		for i := 0; i < LDPCK; i++ {
			want := (msg[i/8] >> (7 - uint(i%8))) & 0x01
			if plain[i] != want {
				t.Errorf("Encode174(%v): systematic bit %d = %d, want %d", msg, i, plain[i], want)
			}
		}
	}
}

func TestBPDecodeRecoversNoiselessCodeword(t *testing.T) {
	msg := [12]uint8{0x9A, 0x12, 0x44, 0xF8, 0x01, 0xAB, 0xCD, 0xEF, 0x10, 0x20, 0x30, 0x00}
	codeword := Encode174(msg)

	plain := make([]uint8, LDPCN)
	for i := 0; i < LDPCN; i++ {
		plain[i] = (codeword[i/8] >> (7 - uint(i%8))) & 0x01
	}

	llr := make([]float32, LDPCN)
	for i, b := range plain {
		if b == 1 {
			llr[i] = 4.0
		} else {
			llr[i] = -4.0
		}
	}

	decoded, errors := LDPCDecode(llr, 25)
	if errors != 0 {
		t.Fatalf("LDPCDecode on noiseless LLRs: %d parity errors, want 0", errors)
	}
	for i := range plain {
		if decoded[i] != plain[i] {
			t.Errorf("LDPCDecode bit %d = %d, want %d", i, decoded[i], plain[i])
		}
	}
}
