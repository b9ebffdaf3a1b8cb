package wipe

import (
	"crypto/rand"
	"fmt"
)

// Method selects the data pattern written by overwrite passes.
type Method string

const (
	MethodRandom  Method = "random"
	MethodZero    Method = "zero"
	MethodDOD5220 Method = "dod5220"
)

// ParseMethod validates a method name. An empty name selects random.
func ParseMethod(name string) (Method, error) {
	m := Method(name)
	switch m {
	case "":
		return MethodRandom, nil
	case MethodRandom, MethodZero, MethodDOD5220:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported wipe method: %s", name)
	}
}

// Fill writes the pattern of the 1-based pass into buf.
// dod5220 cycles random, zero, random.
func (m Method) Fill(buf []byte, pass int) error {
	switch m {
	case MethodZero:
		return FillBufferPattern(buf, 0x00)
	case MethodDOD5220:
		if (pass-1)%3 == 1 {
			return FillBufferPattern(buf, 0x00)
		}
		return FillRandom(buf)
	case MethodRandom, "":
		return FillRandom(buf)
	default:
		return fmt.Errorf("unsupported wipe method: %s", m)
	}
}

// Describe returns the method line printed on certificates.
func (m Method) Describe(passes int) string {
	return fmt.Sprintf("Scramble -> Delete -> Overwrite -> Junk -> Quick Format (%d passes, %s)", passes, m)
}

// FillBufferPattern fills buf with a constant byte.
func FillBufferPattern(buf []byte, pattern byte) error {
	for i := range buf {
		buf[i] = pattern
	}
	return nil
}

// FillRandom fills buf from the system CSPRNG.
func FillRandom(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("random data generation failed: %w", err)
	}
	return nil
}
