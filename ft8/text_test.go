package ft8

import "testing"

func TestFmtMsg(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "cq ka9q fn20", "CQ KA9Q FN20"},
		{"collapses spaces", "CQ   KA9Q  FN20", "CQ KA9Q FN20"},
		{"already canonical", "CQ KA9Q FN20", "CQ KA9Q FN20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FmtMsg(tt.input); got != tt.want {
				t.Errorf("FmtMsg(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDDToIntIntToDDRoundTrip(t *testing.T) {
	tests := []int{-50, -1, 0, 1, 9, 32, 49}
	for _, v := range tests {
		s := IntToDD(v, 2, true)
		got := DDToInt(s, len(s))
		if got != v {
			t.Errorf("IntToDD(%d) = %q, DDToInt back = %d", v, s, got)
		}
	}
}

func TestNcharCharnRoundTrip(t *testing.T) {
	tables := []CharTable{
		CharTableFull,
		CharTableAlphanumSpace,
		CharTableAlphanum,
		CharTableLettersSpace,
		CharTableNumeric,
		CharTableAlphanumSpaceSlash,
	}
	alphabets := map[CharTable]string{
		CharTableFull:               " 0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ+-./?",
		CharTableAlphanumSpace:      " 0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		CharTableAlphanum:           "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		CharTableLettersSpace:       " ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		CharTableNumeric:            "0123456789",
		CharTableAlphanumSpaceSlash: " 0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ/",
	}

	for _, table := range tables {
		chars := alphabets[table]
		for i := 0; i < len(chars); i++ {
			c := chars[i]
			idx := Nchar(c, table)
			if idx < 0 {
				t.Errorf("table %d: Nchar(%q) = -1, want a valid index", table, c)
				continue
			}
			back := Charn(idx, table)
			if back != c {
				t.Errorf("table %d: Charn(Nchar(%q)) = %q, want %q", table, c, back, c)
			}
		}
	}
}

func TestNcharRejectsUnknownChar(t *testing.T) {
	if idx := Nchar('#', CharTableNumeric); idx != -1 {
		t.Errorf("Nchar('#', CharTableNumeric) = %d, want -1", idx)
	}
}

func TestCopyToken(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTok   string
		wantRest  string
	}{
		{"simple", "CQ KA9Q FN20", 13, "CQ", "KA9Q FN20"},
		{"leading spaces", "  CQ KA9Q", 13, "CQ", "KA9Q"},
		{"last token", "FN20", 13, "FN20", ""},
		{"truncated by maxLength", "ABCDEFGHIJKLMNOP", 6, "ABCDEF", "GHIJKLMNOP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, rest := CopyToken(tt.input, tt.maxLength)
			if tok != tt.wantTok || rest != tt.wantRest {
				t.Errorf("CopyToken(%q, %d) = (%q, %q), want (%q, %q)",
					tt.input, tt.maxLength, tok, rest, tt.wantTok, tt.wantRest)
			}
		})
	}
}
