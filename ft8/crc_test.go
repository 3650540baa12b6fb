package ft8

import "testing"

func TestAddCRCExtractCRCRoundTrip(t *testing.T) {
	payloads := [][10]uint8{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF8, 0x00},
		{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0, 0x11, 0x00},
	}

	for _, p := range payloads {
		a91 := AddCRC(p)
		extracted := ExtractCRC(a91[:])

		check := a91
		check[9] &= 0xF8
		check[10] = 0
		recomputed := ComputeCRC(check[:], 96-CRCWidth)

		if extracted != recomputed {
			t.Errorf("payload %v: extracted CRC %d != recomputed CRC %d", p, extracted, recomputed)
		}
	}
}

func TestPackBits(t *testing.T) {
	bits := []uint8{1, 0, 1, 0, 0, 0, 0, 1, 1, 1}
	got := PackBits(bits, len(bits))
	want := []uint8{0b10100001, 0b11000000}
	if len(got) != len(want) {
		t.Fatalf("PackBits length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PackBits()[%d] = %08b, want %08b", i, got[i], want[i])
		}
	}
}

func TestComputeCRCDeterministic(t *testing.T) {
	msg := []uint8{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11, 0x22, 0x33, 0x44, 0x00}
	a := ComputeCRC(msg, 96-CRCWidth)
	b := ComputeCRC(msg, 96-CRCWidth)
	if a != b {
		t.Errorf("ComputeCRC is not deterministic: %d != %d", a, b)
	}
	if a >= (1 << CRCWidth) {
		t.Errorf("ComputeCRC result %d exceeds %d-bit width", a, CRCWidth)
	}
}
