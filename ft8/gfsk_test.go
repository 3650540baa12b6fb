package ft8

import (
	"math"
	"testing"
)

func TestSynthGFSKLength(t *testing.T) {
	symbols := []uint8{0, 1, 2, 3, 4, 5, 6, 7}
	signal := SynthGFSK(symbols, 1500.0, FT8SymbolBT, FT8SymbolTime, 12000)

	nSpSym := int(math.Floor(0.5 + FT8SymbolTime*12000))
	want := len(symbols) * nSpSym
	if len(signal) != want {
		t.Errorf("SynthGFSK length = %d, want %d", len(signal), want)
	}
}

func TestSynthGFSKBoundedAmplitude(t *testing.T) {
	symbols := []uint8{0, 3, 7, 1, 4, 2, 6, 5}
	signal := SynthGFSK(symbols, 1500.0, FT8SymbolBT, FT8SymbolTime, 12000)

	for i, s := range signal {
		if s > 1.01 || s < -1.01 {
			t.Fatalf("signal[%d] = %v, outside [-1,1]", i, s)
		}
	}
}

func TestSynthGFSKRampsToZeroAtEdges(t *testing.T) {
	symbols := []uint8{2, 5, 1, 6}
	signal := SynthGFSK(symbols, 1000.0, FT8SymbolBT, FT8SymbolTime, 12000)

	if len(signal) == 0 {
		t.Fatal("empty signal")
	}
	if signal[0] != 0 {
		t.Errorf("signal[0] = %v, want 0 (envelope starts at zero)", signal[0])
	}
	if signal[len(signal)-1] != 0 {
		t.Errorf("signal[last] = %v, want 0 (envelope ends at zero)", signal[len(signal)-1])
	}
}

func TestSynthesizeTonesDispatchesByProtocol(t *testing.T) {
	ft8Tones := make([]uint8, FT8NN)
	ft8Signal := SynthesizeTones(ft8Tones, ProtocolFT8, 1500.0, 12000)
	wantFT8Len := FT8NN * int(math.Floor(0.5+FT8SymbolTime*12000))
	if len(ft8Signal) != wantFT8Len {
		t.Errorf("FT8 SynthesizeTones length = %d, want %d", len(ft8Signal), wantFT8Len)
	}

	ft4Tones := make([]uint8, FT4NN)
	ft4Signal := SynthesizeTones(ft4Tones, ProtocolFT4, 1500.0, 12000)
	wantFT4Len := FT4NN * int(math.Floor(0.5+FT4SymbolTime*12000))
	if len(ft4Signal) != wantFT4Len {
		t.Errorf("FT4 SynthesizeTones length = %d, want %d", len(ft4Signal), wantFT4Len)
	}
}
