package assembler

import (
	"errors"
	"strconv"
	"strings"
)

// ParseLiteral parses an unsigned 32-bit literal: 0x prefix for hex, 0b for binary,
// decimal otherwise. Signs and digit separators are rejected.
func ParseLiteral(str string) (uint32, error) {
	digits, base := str, 10
	if strings.HasPrefix(str, "0x") {
		digits, base = str[2:], 16
	} else if strings.HasPrefix(str, "0b") {
		digits, base = str[2:], 2
	}

	if len(digits) == 0 {
		return 0, Errors.MalformedLiteral(str, "no digits")
	}
	// ParseUint already refuses signs and, with an explicit base, underscores
	value, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, Errors.MalformedLiteral(str, "does not fit in 32 bits")
		}
		return 0, Errors.MalformedLiteral(str, "invalid base "+strconv.Itoa(base)+" digits")
	}
	return uint32(value), nil
}

// FormatLiteral renders value in the literal syntax for base 2, 10 or 16.
func FormatLiteral(value uint32, base int) string {
	switch base {
	case 16:
		return "0x" + strconv.FormatUint(uint64(value), 16)
	case 2:
		return "0b" + strconv.FormatUint(uint64(value), 2)
	}
	return strconv.FormatUint(uint64(value), 10)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseRegister resolves an r<n> token to its register number.
func ParseRegister(str string) (uint32, error) {
	if len(str) < 2 || (str[0] != 'r' && str[0] != 'R') {
		return 0, Errors.MalformedOperand(str, "expected a register r0 to r31")
	}
	for i := 1; i < len(str); i++ {
		if !isDigit(str[i]) {
			return 0, Errors.MalformedOperand(str, "register number must be decimal digits")
		}
	}
	n, err := strconv.ParseUint(str[1:], 10, 32)
	if err != nil || n > 31 {
		return 0, Errors.RegisterOutOfRange(str)
	}
	return uint32(n), nil
}

func looksLikeRegister(str string) bool {
	return len(str) >= 2 && (str[0] == 'r' || str[0] == 'R') && isDigit(str[1])
}
