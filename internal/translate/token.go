package translate

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// The web translate endpoint validates the tk query parameter, so the
// derivation below must produce byte-identical output for identical input.
// It hashes the UTF-8 expansion of the text's UTF-16 code units with two
// fixed shift/mix rounds, then folds in the key halves.

const tokenKey = "440498.1287591069"

// Token derives the tk request parameter for text.
func Token(text string) string {
	units := utf16.Encode([]rune(text))

	var bytes []uint32
	for i := 0; i < len(units); i++ {
		g := uint32(units[i])
		switch {
		case g < 128:
			bytes = append(bytes, g)
		case g < 2048:
			bytes = append(bytes, g>>6|192, g&63|128)
		case g&0xFC00 == 0xD800 && i+1 < len(units) && uint32(units[i+1])&0xFC00 == 0xDC00:
			i++
			g = 0x10000 + (g&0x3FF)<<10 + uint32(units[i])&0x3FF
			bytes = append(bytes, g>>18|240, g>>12&63|128, g>>6&63|128, g&63|128)
		default:
			bytes = append(bytes, g>>12|224, g>>6&63|128, g&63|128)
		}
	}

	parts := strings.SplitN(tokenKey, ".", 2)
	k0, _ := strconv.ParseUint(parts[0], 10, 32)
	k1, _ := strconv.ParseUint(parts[1], 10, 32)

	a := uint32(k0)
	for _, b := range bytes {
		a += b
		a = tokenMix(a, "+-a^+6")
	}
	a = tokenMix(a, "+-3^+b+-f")
	a ^= uint32(k1)

	n := uint64(a) % 1_000_000
	return strconv.FormatUint(n, 10) + "." + strconv.FormatUint(n^k0, 10)
}

// tokenMix applies the shift/combine steps encoded in seed: each triplet is
// (combine op, shift direction, shift amount), with '+' meaning add/right
// and anything else xor/left; letters encode amounts above nine.
func tokenMix(a uint32, seed string) uint32 {
	for i := 0; i+2 < len(seed); i += 3 {
		c := seed[i+2]
		var d uint32
		if c >= 'a' {
			d = uint32(c) - 87
		} else {
			d = uint32(c - '0')
		}
		if seed[i+1] == '+' {
			d = a >> d
		} else {
			d = a << d
		}
		if seed[i] == '+' {
			a += d
		} else {
			a ^= d
		}
	}
	return a
}
