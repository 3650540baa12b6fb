package ft8

import (
	"math"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestMaidenheadToLatLon(t *testing.T) {
	lat, lon, err := MaidenheadToLatLon("FN20")
	if err != nil {
		t.Fatalf("MaidenheadToLatLon(FN20): %v", err)
	}
	if !almostEqual(lat, 40.5, 0.01) || !almostEqual(lon, -75.0, 0.01) {
		t.Errorf("MaidenheadToLatLon(FN20) = (%v, %v), want (40.5, -75.0)", lat, lon)
	}
}

func TestMaidenheadToLatLonShortLocator(t *testing.T) {
	lat, lon, err := MaidenheadToLatLon("FN2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 0 || lon != 0 {
		t.Errorf("short locator: got (%v, %v), want (0, 0)", lat, lon)
	}
}

func TestCalculateDistanceAndBearingZeroAtSamePoint(t *testing.T) {
	dist, _ := CalculateDistanceAndBearing(40.5, -74.0, 40.5, -74.0)
	if !almostEqual(dist, 0, 0.001) {
		t.Errorf("distance to self = %v, want 0", dist)
	}
}

func TestCalculateDistanceAndBearingKnownRoute(t *testing.T) {
	// New York to London, roughly 5570 km, bearing northeast.
	dist, bearing := CalculateDistanceAndBearing(40.7128, -74.0060, 51.5074, -0.1278)
	if dist < 5500 || dist > 5600 {
		t.Errorf("NY-London distance = %v km, want ~5570", dist)
	}
	if bearing < 0 || bearing >= 360 {
		t.Errorf("bearing = %v, want in [0, 360)", bearing)
	}
}

func TestIsValidCallsignAndGrid(t *testing.T) {
	if !isValidCallsign("KA9Q") {
		t.Error("KA9Q should be a valid callsign")
	}
	if isValidCallsign("CQ") {
		t.Error("CQ should not be a valid callsign")
	}
	if !isValidGridLocator("FN20") {
		t.Error("FN20 should be a valid grid locator")
	}
	if isValidGridLocator("RR73") {
		t.Error("RR73 should not be treated as a grid locator")
	}
}

func TestMaidenheadToLatLonSixCharPrecision(t *testing.T) {
	lat, lon, err := MaidenheadToLatLon("FN20XA")
	if err != nil {
		t.Fatalf("MaidenheadToLatLon(FN20XA): %v", err)
	}
	// Subsquare falls within the FN20 square's 2deg x 1deg cell.
	if lat < 40.0 || lat > 41.0 || lon < -76.0 || lon > -74.0 {
		t.Errorf("MaidenheadToLatLon(FN20XA) = (%v, %v), want inside FN20's cell", lat, lon)
	}
}

func TestMaidenheadToLatLonRejectsBadLength(t *testing.T) {
	if _, _, err := MaidenheadToLatLon("FN20X"); err == nil {
		t.Error("MaidenheadToLatLon with a 5-character locator should fail, got nil error")
	}
}

func TestLatLonToMaidenheadRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  float64
		precision int
	}{
		{"FN20 center, 4-char", 40.5, -75.0, 4},
		{"FN20 center, 6-char", 40.5, -75.0, 6},
		{"southern hemisphere", -33.8, 151.2, 4},
		{"near antimeridian", 64.0, 179.9, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator, err := LatLonToMaidenhead(tt.lat, tt.lon, tt.precision)
			if err != nil {
				t.Fatalf("LatLonToMaidenhead: %v", err)
			}
			if len(locator) != tt.precision {
				t.Fatalf("len(locator) = %d, want %d", len(locator), tt.precision)
			}

			gotLat, gotLon, err := MaidenheadToLatLon(locator)
			if err != nil {
				t.Fatalf("MaidenheadToLatLon(%q): %v", locator, err)
			}

			// The round trip should land within one grid cell of the original
			// point: a 4-char locator's cell is 2deg lon x 1deg lat, a 6-char
			// locator's is 1/12 deg lon x 1/24 deg lat.
			lonTol, latTol := squareLonDeg, squareLatDeg
			if tt.precision == 6 {
				lonTol, latTol = subsquareLonDeg, subsquareLatDeg
			}
			if !almostEqual(gotLat, tt.lat, latTol) || !almostEqual(gotLon, tt.lon, lonTol) {
				t.Errorf("round trip (%v,%v) -> %q -> (%v,%v), outside one grid cell",
					tt.lat, tt.lon, locator, gotLat, gotLon)
			}
		})
	}
}

func TestLatLonToMaidenheadRejectsBadPrecision(t *testing.T) {
	if _, err := LatLonToMaidenhead(40.5, -75.0, 5); err == nil {
		t.Error("LatLonToMaidenhead with precision=5 should fail, got nil error")
	}
}

func TestExtractCallsignLocator(t *testing.T) {
	call, grid := extractCallsignLocator("CQ KA9Q FN20")
	if call != "KA9Q" || grid != "FN20" {
		t.Errorf("extractCallsignLocator = (%q, %q), want (KA9Q, FN20)", call, grid)
	}

	call, grid = extractCallsignLocator("KA9Q W1ABC RR73")
	if call != "W1ABC" || grid != "" {
		t.Errorf("extractCallsignLocator = (%q, %q), want (W1ABC, \"\")", call, grid)
	}
}
