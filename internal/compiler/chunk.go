package compiler

// Chunk splits s into ceil(len/max) contiguous parts. Every part
// except the last is exactly max bytes; concatenating the parts in
// order reproduces s. An empty string yields no parts.
func Chunk(s string, max int) []string {
	if max <= 0 || s == "" {
		return nil
	}

	parts := make([]string, 0, (len(s)+max-1)/max)
	for len(s) > max {
		parts = append(parts, s[:max])
		s = s[max:]
	}
	return append(parts, s)
}
