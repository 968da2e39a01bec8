// Package wspr encodes WSPR messages into 4-FSK symbol sequences.
//
// The encoding follows G4JNT's description of the WSPR coding process
// (http://g4jnt.com/WSPR_Coding_Process.pdf): callsign, Maidenhead grid
// and power are packed into 50 bits, expanded to 162 bits by a rate-1/2
// K=32 convolutional code, interleaved, and merged with the sync vector.
package wspr

import (
	"errors"
	"math/bits"
	"time"
)

// SymbolCount is the fixed length of every WSPR transmission.
const SymbolCount = 162

// 4-FSK transmission parameters. The encoder itself produces only tone
// indices; these constants describe how a transmitter maps them to RF.
const (
	ToneSpacing = 12000.0 / 8192.0 // Hz
)

// SymbolDuration is the on-air time of one symbol (8192 samples at 12 kHz).
const SymbolDuration = 8192 * time.Second / 12000

// TransmissionDuration is the total on-air time of all 162 symbols.
const TransmissionDuration = SymbolCount * SymbolDuration

// Validation errors, one per input field. Encode checks the callsign
// first, then the grid, then the power; the first failure wins.
var (
	ErrInvalidCallsign = errors.New("invalid callsign")
	ErrInvalidGrid     = errors.New("invalid grid locator")
	ErrInvalidPower    = errors.New("invalid power level")
)

// Convolutional code generator polynomials (constraint length 32).
const (
	polynomial0 = 0xF2D05351
	polynomial1 = 0xE4613C47
)

// Per-position multipliers and subtractions for folding the six padded
// callsign characters into a 28-bit integer.
var (
	callsignScalars   = [6]uint32{0, 36, 10, 27, 27, 27}
	callsignSubtracts = [6]uint32{0, 0, 0, 10, 10, 10}
)

// callsignCharValue maps a padded callsign character to its numeric
// value: space is 36, digits are 0-9, uppercase letters are 10-35.
func callsignCharValue(c byte) (uint32, error) {
	switch {
	case c == ' ':
		return 36, nil
	case c >= '0' && c <= '9':
		return uint32(c - '0'), nil
	case c >= 'A' && c <= 'Z':
		return uint32(c-'A') + 10, nil
	default:
		return 0, ErrInvalidCallsign
	}
}

// padCallsign space-pads a 3-6 character callsign to exactly 6
// characters so that the digit lands at index 2:
//
//	"K1A"    => " K1A  "
//	"K1AB"   => " K1AB "
//	"KA1B"   => "KA1B  "
//	"K1ABC"  => " K1ABC"
//	"KA1BC"  => "KA1BC "
//	"KA1BCD" => "KA1BCD"
//
// Lengths 3-4 key on the original 3rd character, length 5 on the
// original 2nd. The asymmetry comes straight from the protocol's
// encoding table and must not be unified.
func padCallsign(callsign string) ([6]byte, error) {
	padded := [6]byte{' ', ' ', ' ', ' ', ' ', ' '}

	length := len(callsign)
	if length < 3 || length > 6 {
		return padded, ErrInvalidCallsign
	}

	start := 0
	switch length {
	case 3, 4:
		if !isDigit(callsign[2]) {
			start = 1
		}
	case 5:
		if isDigit(callsign[1]) {
			start = 1
		}
	}

	copy(padded[start:start+length], callsign)

	if !isDigit(padded[2]) {
		return padded, ErrInvalidCallsign
	}
	return padded, nil
}

// EncodeCallsign packs a 3-6 character callsign into its 28-bit code.
func EncodeCallsign(callsign string) (uint32, error) {
	padded, err := padCallsign(callsign)
	if err != nil {
		return 0, err
	}

	var n uint32
	for i, c := range padded {
		value, err := callsignCharValue(c)
		if err != nil {
			return 0, err
		}
		n = n*callsignScalars[i] + value - callsignSubtracts[i]
	}
	return n, nil
}

// EncodeGrid packs a 4-character Maidenhead locator (two letters A-R,
// two digits, letters case-insensitive) into its 15-bit code.
func EncodeGrid(grid string) (uint16, error) {
	if len(grid) != 4 {
		return 0, ErrInvalidGrid
	}

	var v [4]uint16
	for i := 0; i < 4; i++ {
		c := grid[i]
		if c >= 'a' && c <= 'r' {
			c -= 'a' - 'A'
		}
		switch {
		case i < 2 && c >= 'A' && c <= 'R':
			v[i] = uint16(c - 'A')
		case i >= 2 && isDigit(c):
			v[i] = uint16(c - '0')
		default:
			return 0, ErrInvalidGrid
		}
	}

	return (179-10*v[0]-v[2])*180 + 10*v[1] + v[3], nil
}

// EncodePower validates a power level in dBm and returns its 7-bit
// code. WSPR only permits 0-60 dBm with a last digit of 0, 3 or 7.
func EncodePower(power int) (uint8, error) {
	if power < 0 || power > 60 {
		return 0, ErrInvalidPower
	}
	switch power % 10 {
	case 0, 3, 7:
		return uint8(power + 64), nil
	default:
		return 0, ErrInvalidPower
	}
}

// shiftRegister feeds bits into a 32-bit register and reports the
// parity of the register masked with its generator polynomial.
type shiftRegister struct {
	value uint32
	taps  uint32
}

func (r *shiftRegister) shift(bit uint32) byte {
	r.value = r.value<<1 | bit
	return byte(bits.OnesCount32(r.value&r.taps) & 1)
}

// sourceBits lays out the packed fields as an 81-bit stream: 28
// callsign bits, 15 grid bits and 7 power bits, each most significant
// bit first, followed by 31 zero tail bits that flush the encoder.
func sourceBits(callsign uint32, grid uint16, power uint8) [81]byte {
	var src [81]byte
	n := 0
	for i := 27; i >= 0; i-- {
		src[n] = byte(callsign>>i) & 1
		n++
	}
	for i := 14; i >= 0; i-- {
		src[n] = byte(grid>>i) & 1
		n++
	}
	for i := 6; i >= 0; i-- {
		src[n] = (power >> i) & 1
		n++
	}
	return src
}

// convolve runs the 81 source bits through both shift registers,
// producing two parity bits per input bit.
func convolve(src [81]byte) [SymbolCount]byte {
	reg0 := shiftRegister{taps: polynomial0}
	reg1 := shiftRegister{taps: polynomial1}

	var encoded [SymbolCount]byte
	for i, bit := range src {
		encoded[2*i] = reg0.shift(uint32(bit))
		encoded[2*i+1] = reg1.shift(uint32(bit))
	}
	return encoded
}

// interleave permutes the encoded bits by 8-bit bit reversal: counting
// i upward, each reversed value below 162 receives the next bit in
// generation order. Spreads burst errors across the message.
func interleave(encoded [SymbolCount]byte) [SymbolCount]byte {
	var interleaved [SymbolCount]byte
	p := 0
	for i := 0; i < 256 && p < SymbolCount; i++ {
		j := bits.Reverse8(uint8(i))
		if int(j) < SymbolCount {
			interleaved[j] = encoded[p]
			p++
		}
	}
	return interleaved
}

// Encode converts a callsign, a 4-character Maidenhead grid locator
// and a power level in dBm into the 162 tone indices (0-3) of a WSPR
// transmission. It is a pure function: identical inputs always yield
// the identical symbol sequence, and no state survives the call.
func Encode(callsign, grid string, power int) ([SymbolCount]byte, error) {
	var symbols [SymbolCount]byte

	packedCallsign, err := EncodeCallsign(callsign)
	if err != nil {
		return symbols, err
	}
	packedGrid, err := EncodeGrid(grid)
	if err != nil {
		return symbols, err
	}
	packedPower, err := EncodePower(power)
	if err != nil {
		return symbols, err
	}

	interleaved := interleave(convolve(sourceBits(packedCallsign, packedGrid, packedPower)))

	for i := 0; i < SymbolCount; i++ {
		symbols[i] = syncVector[i] + 2*interleaved[i]
	}
	return symbols, nil
}

// ToneFrequency returns the audio frequency of a symbol relative to
// the given base frequency in Hz.
func ToneFrequency(baseFreq float64, symbol byte) float64 {
	return baseFreq + float64(symbol)*ToneSpacing
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
