package main

import "encoding/base64"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// base64Lookup maps a byte to its 6-bit value, or -1 if it is not in the alphabet
var base64Lookup = func() [256]int {
	var table [256]int
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		table[base64Alphabet[i]] = i
	}
	return table
}()

// decodeBase64 decodes standard or URL-safe base64 leniently.
// Whitespace and unknown characters are skipped and '=' stops decoding,
// so malformed input yields a truncated (possibly empty) result instead of an error.
func decodeBase64(input string) []byte {
	output := make([]byte, 0, len(input)*3/4)

	val := 0
	bits := -8
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch c {
		case '\r', '\n', '\t', ' ':
			continue
		case '-':
			c = '+'
		case '_':
			c = '/'
		}

		v := base64Lookup[c]
		if v == -1 {
			if c == '=' {
				break
			}
			continue
		}

		val = (val << 6) | v
		bits += 6
		if bits >= 0 {
			output = append(output, byte(val>>bits))
			bits -= 8
		}
		// keep only the bits that have not been emitted yet
		val &= (1 << (bits + 8)) - 1
	}

	return output
}

// encodeBase64 encodes with the standard alphabet and '=' padding, no line wrapping
func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
