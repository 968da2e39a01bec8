package wspr

import (
	"errors"
	"testing"
)

func TestEncodeCallsign(t *testing.T) {
	t.Run("Known Values", func(t *testing.T) {
		cases := []struct {
			callsign string
			want     uint32
		}{
			{"  9   ", 262374389},
			{"KA1BCD", 143706369},
		}
		for _, c := range cases {
			got, err := EncodeCallsign(c.callsign)
			if err != nil {
				t.Errorf("EncodeCallsign(%q) failed: %v", c.callsign, err)
				continue
			}
			if got != c.want {
				t.Errorf("EncodeCallsign(%q) = %d, want %d", c.callsign, got, c.want)
			}
		}
	})

	t.Run("Length Limits", func(t *testing.T) {
		for _, callsign := range []string{"", "K1", "KA1BCDE"} {
			if _, err := EncodeCallsign(callsign); !errors.Is(err, ErrInvalidCallsign) {
				t.Errorf("EncodeCallsign(%q) expected ErrInvalidCallsign, got %v", callsign, err)
			}
		}
	})

	t.Run("Digit Position", func(t *testing.T) {
		// No padding can put a digit at index 2 of these.
		for _, callsign := range []string{"ABC", "ABCDEF", "KABCD"} {
			if _, err := EncodeCallsign(callsign); !errors.Is(err, ErrInvalidCallsign) {
				t.Errorf("EncodeCallsign(%q) expected ErrInvalidCallsign, got %v", callsign, err)
			}
		}
	})

	t.Run("Invalid Characters", func(t *testing.T) {
		for _, callsign := range []string{"K1a", "K/1AB", "K1AB!"} {
			if _, err := EncodeCallsign(callsign); !errors.Is(err, ErrInvalidCallsign) {
				t.Errorf("EncodeCallsign(%q) expected ErrInvalidCallsign, got %v", callsign, err)
			}
		}
	})
}

func TestPadCallsign(t *testing.T) {
	// The padding table from the protocol spec. Note length 5 keys on
	// the original 2nd character while lengths 3-4 key on the 3rd.
	cases := []struct {
		callsign string
		want     string
	}{
		{"K1A", " K1A  "},
		{"K1AB", " K1AB "},
		{"KA1B", "KA1B  "},
		{"K1ABC", " K1ABC"},
		{"KA1BC", "KA1BC "},
		{"KA1BCD", "KA1BCD"},
	}
	for _, c := range cases {
		padded, err := padCallsign(c.callsign)
		if err != nil {
			t.Errorf("padCallsign(%q) failed: %v", c.callsign, err)
			continue
		}
		if string(padded[:]) != c.want {
			t.Errorf("padCallsign(%q) = %q, want %q", c.callsign, padded, c.want)
		}
	}
}

func TestEncodeGrid(t *testing.T) {
	t.Run("Known Values", func(t *testing.T) {
		cases := []struct {
			grid string
			want uint16
		}{
			{"AA00", 32220},
			{"RR99", 179},
			{"FN34", 22814},
			{"fn34", 22814}, // letters are case-insensitive
		}
		for _, c := range cases {
			got, err := EncodeGrid(c.grid)
			if err != nil {
				t.Errorf("EncodeGrid(%q) failed: %v", c.grid, err)
				continue
			}
			if got != c.want {
				t.Errorf("EncodeGrid(%q) = %d, want %d", c.grid, got, c.want)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, grid := range []string{"Z", "ZZ", "ZZ11", "AA0", "AA000", "A100", "AAA0", "AA0A"} {
			if _, err := EncodeGrid(grid); !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("EncodeGrid(%q) expected ErrInvalidGrid, got %v", grid, err)
			}
		}
	})
}

func TestEncodePower(t *testing.T) {
	t.Run("Full Range", func(t *testing.T) {
		for power := 0; power <= 60; power++ {
			got, err := EncodePower(power)
			rem := power % 10
			if rem == 0 || rem == 3 || rem == 7 {
				if err != nil {
					t.Errorf("EncodePower(%d) failed: %v", power, err)
				} else if got != uint8(power+64) {
					t.Errorf("EncodePower(%d) = %d, want %d", power, got, power+64)
				}
			} else if !errors.Is(err, ErrInvalidPower) {
				t.Errorf("EncodePower(%d) expected ErrInvalidPower, got %v", power, err)
			}
		}
	})

	t.Run("Out Of Range", func(t *testing.T) {
		for _, power := range []int{-1, -10, 61, 67, 70, 1000} {
			if _, err := EncodePower(power); !errors.Is(err, ErrInvalidPower) {
				t.Errorf("EncodePower(%d) expected ErrInvalidPower, got %v", power, err)
			}
		}
	})
}

func TestInterleaveIsBijection(t *testing.T) {
	// Tag each position with a distinct value and check every one
	// lands in exactly one output slot.
	var in [SymbolCount]byte
	for i := range in {
		in[i] = byte(i)
	}
	out := interleave(in)

	var seen [SymbolCount]bool
	for _, v := range out {
		if seen[v] {
			t.Fatalf("source index %d placed twice", v)
		}
		seen[v] = true
	}
}

func TestEncodeK1A(t *testing.T) {
	want := [SymbolCount]byte{
		3, 3, 0, 0, 2, 2, 0, 0, 1, 2, 0, 0, 1, 1, 1, 0, 2, 0, 3, 0, 0,
		3, 0, 1, 1, 3, 3, 0, 0, 0, 0, 2, 0, 2, 1, 0, 0, 3, 2, 1, 2, 0,
		2, 0, 0, 0, 3, 0, 1, 3, 0, 2, 3, 1, 2, 3, 0, 2, 0, 3, 3, 0, 1,
		2, 2, 0, 0, 1, 3, 2, 1, 0, 3, 2, 3, 2, 1, 0, 0, 3, 2, 2, 1, 2,
		1, 1, 0, 0, 0, 1, 1, 0, 3, 2, 3, 2, 2, 2, 3, 0, 2, 2, 0, 0, 1,
		2, 2, 1, 2, 0, 1, 3, 1, 2, 3, 3, 0, 0, 1, 1, 2, 3, 2, 2, 0, 3,
		1, 3, 2, 2, 0, 2, 0, 3, 0, 3, 2, 0, 1, 1, 2, 2, 0, 0, 2, 2, 2,
		1, 3, 2, 3, 2, 3, 1, 2, 0, 0, 3, 1, 2, 2, 2,
	}

	got, err := Encode("K1A", "FN34", 33)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != want {
		t.Errorf("Encode(\"K1A\", \"FN34\", 33) = %v, want %v", got, want)
	}
}

func TestEncodeN6AB(t *testing.T) {
	want := [SymbolCount]byte{
		3, 1, 0, 0, 2, 2, 0, 2, 1, 0, 2, 0, 1, 3, 3, 0, 2, 0, 3, 0, 0,
		1, 2, 1, 3, 1, 1, 2, 0, 2, 0, 0, 0, 2, 3, 2, 0, 1, 0, 3, 2, 0,
		0, 0, 0, 2, 1, 0, 1, 3, 2, 0, 3, 1, 2, 1, 2, 0, 2, 3, 3, 0, 3,
		0, 2, 2, 2, 3, 3, 0, 3, 2, 3, 2, 3, 2, 3, 0, 2, 1, 2, 2, 1, 0,
		1, 3, 2, 2, 0, 1, 1, 0, 1, 2, 1, 0, 2, 2, 1, 0, 0, 2, 2, 0, 1,
		0, 2, 3, 0, 2, 1, 1, 1, 0, 3, 3, 2, 0, 3, 1, 0, 3, 2, 0, 0, 3,
		3, 1, 2, 2, 2, 2, 2, 3, 0, 1, 2, 0, 1, 1, 0, 2, 2, 0, 2, 2, 2,
		3, 3, 2, 1, 2, 1, 3, 0, 0, 0, 3, 1, 0, 2, 2,
	}

	got, err := Encode("N6AB", "CM87", 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != want {
		t.Errorf("Encode(\"N6AB\", \"CM87\", 0) = %v, want %v", got, want)
	}
}

func TestEncodeG1ABC(t *testing.T) {
	want := [SymbolCount]byte{
		3, 3, 0, 0, 0, 2, 0, 0, 1, 0, 2, 0, 1, 1, 3, 2, 2, 2, 3, 2, 2,
		1, 0, 1, 1, 3, 1, 2, 2, 2, 0, 0, 0, 0, 3, 0, 0, 1, 0, 3, 0, 2,
		2, 2, 0, 2, 3, 2, 1, 3, 2, 2, 3, 3, 0, 1, 0, 0, 0, 1, 3, 2, 3,
		2, 2, 2, 0, 1, 1, 2, 3, 0, 3, 0, 1, 0, 3, 0, 0, 1, 2, 2, 3, 2,
		3, 3, 0, 0, 2, 3, 1, 2, 1, 0, 1, 2, 2, 2, 1, 0, 2, 0, 2, 2, 3,
		2, 0, 1, 0, 0, 3, 1, 1, 2, 3, 3, 2, 2, 1, 1, 2, 1, 2, 0, 0, 1,
		3, 3, 2, 0, 0, 2, 2, 1, 2, 3, 2, 0, 1, 1, 2, 2, 2, 2, 2, 0, 2,
		3, 3, 2, 1, 2, 1, 3, 0, 2, 2, 3, 3, 2, 2, 0,
	}

	got, err := Encode("G1ABC", "IO83", 37)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != want {
		t.Errorf("Encode(\"G1ABC\", \"IO83\", 37) = %v, want %v", got, want)
	}
}

func TestEncodeKA1BCD(t *testing.T) {
	want := [SymbolCount]byte{
		3, 3, 2, 2, 0, 2, 0, 2, 3, 2, 0, 2, 1, 1, 1, 0, 0, 2, 1, 0, 2,
		3, 2, 1, 1, 1, 1, 0, 0, 2, 0, 2, 2, 0, 3, 2, 2, 3, 2, 3, 2, 2,
		2, 0, 2, 0, 3, 0, 3, 1, 0, 2, 3, 1, 0, 3, 2, 2, 0, 1, 3, 2, 1,
		2, 0, 2, 0, 3, 3, 0, 3, 2, 1, 2, 1, 0, 3, 0, 2, 3, 0, 0, 3, 0,
		3, 3, 2, 0, 2, 1, 1, 0, 3, 0, 3, 2, 2, 0, 3, 2, 0, 0, 2, 0, 3,
		2, 0, 1, 2, 2, 1, 3, 1, 2, 1, 3, 2, 0, 1, 1, 2, 3, 0, 0, 2, 1,
		3, 3, 2, 0, 2, 2, 2, 3, 0, 1, 2, 2, 1, 1, 0, 2, 0, 0, 0, 0, 2,
		3, 1, 2, 1, 2, 3, 3, 2, 2, 2, 3, 1, 2, 0, 2,
	}

	got, err := Encode("KA1BCD", "AA00", 33)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != want {
		t.Errorf("Encode(\"KA1BCD\", \"AA00\", 33) = %v, want %v", got, want)
	}
}

func TestEncodeValidationOrder(t *testing.T) {
	// All three fields invalid: callsign is checked first.
	if _, err := Encode("X", "bad", 99); !errors.Is(err, ErrInvalidCallsign) {
		t.Errorf("expected ErrInvalidCallsign, got %v", err)
	}
	// Callsign fine, grid and power invalid: grid wins.
	if _, err := Encode("K1A", "bad", 99); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
	if _, err := Encode("K1A", "FN34", 99); !errors.Is(err, ErrInvalidPower) {
		t.Errorf("expected ErrInvalidPower, got %v", err)
	}
}

func TestEncodeIdempotent(t *testing.T) {
	first, err := Encode("KA1BC", "FN34", 27)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode("KA1BC", "FN34", 27)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if first != second {
		t.Error("identical inputs produced different symbol sequences")
	}
}
