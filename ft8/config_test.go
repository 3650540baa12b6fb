package ft8

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFT8ConfigNormalizeDefaults(t *testing.T) {
	cfg := FT8Config{}
	cfg.Normalize()

	if cfg.ProtocolName != "FT8" {
		t.Errorf("ProtocolName = %q, want FT8", cfg.ProtocolName)
	}
	if cfg.Protocol != ProtocolFT8 {
		t.Errorf("Protocol = %v, want ProtocolFT8", cfg.Protocol)
	}
	if cfg.MaxCandidates != 140 {
		t.Errorf("MaxCandidates = %d, want 140", cfg.MaxCandidates)
	}
	if cfg.LDPCIterations != 25 {
		t.Errorf("LDPCIterations = %d, want 25", cfg.LDPCIterations)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestFT8ConfigNormalizeFT4(t *testing.T) {
	cfg := FT8Config{ProtocolName: "FT4"}
	cfg.Normalize()
	if cfg.Protocol != ProtocolFT4 {
		t.Errorf("Protocol = %v, want ProtocolFT4", cfg.Protocol)
	}
}

func TestFT8ConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		proto   string
		wantErr bool
	}{
		{"empty", "", false},
		{"ft8", "FT8", false},
		{"ft4", "FT4", false},
		{"unknown", "FT9", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FT8Config{ProtocolName: tt.proto}
			err := cfg.Validate()
			if tt.wantErr && err != ErrConfig {
				t.Errorf("Validate() = %v, want ErrConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoadConfigAppliesDefaultsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ft8.yaml")
	content := "protocol: FT4\nmin_score: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Protocol != ProtocolFT4 {
		t.Errorf("Protocol = %v, want ProtocolFT4", cfg.Protocol)
	}
	if cfg.MinScore != 5 {
		t.Errorf("MinScore = %d, want 5", cfg.MinScore)
	}
	if cfg.MaxCandidates != 140 {
		t.Errorf("MaxCandidates = %d, want default 140", cfg.MaxCandidates)
	}
}

func TestLoadConfigRejectsUnknownProtocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ft8.yaml")
	if err := os.WriteFile(path, []byte("protocol: FT9\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadConfig(path); err != ErrConfig {
		t.Errorf("LoadConfig(bad protocol) = %v, want ErrConfig", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig(missing file) = nil error, want error")
	}
}

func TestProtocolAccessors(t *testing.T) {
	if ProtocolFT8.String() != "FT8" {
		t.Errorf("ProtocolFT8.String() = %q, want FT8", ProtocolFT8.String())
	}
	if ProtocolFT4.String() != "FT4" {
		t.Errorf("ProtocolFT4.String() = %q, want FT4", ProtocolFT4.String())
	}
	if ProtocolFT8.NumTones() != 8 {
		t.Errorf("ProtocolFT8.NumTones() = %d, want 8", ProtocolFT8.NumTones())
	}
	if ProtocolFT4.NumTones() != 4 {
		t.Errorf("ProtocolFT4.NumTones() = %d, want 4", ProtocolFT4.NumTones())
	}
	if ProtocolFT8.SymbolCount() != FT8SymbolCount {
		t.Errorf("ProtocolFT8.SymbolCount() = %d, want %d", ProtocolFT8.SymbolCount(), FT8SymbolCount)
	}
}
