// Package format houses the low-level byte arithmetic shared by the pool
// allocator. The goal is to keep offset and alignment math focused and
// independent from the public API so higher-level packages never touch raw
// byte positions directly.
package format

// AlignPad returns the smallest non-negative padding p such that (n+p) is a
// multiple of align. An align of 0 or 1 disables padding entirely.
//
// Example:
//
//	AlignPad(13, 8) = 3
//	AlignPad(16, 8) = 0
//	AlignPad(13, 0) = 0
func AlignPad(n, align int) int {
	if align <= 1 {
		return 0
	}
	rem := n % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// AlignUp returns n aligned up to the next multiple of align.
// An align of 0 or 1 leaves n unchanged.
//
// Example:
//
//	AlignUp(13, 8) = 16
//	AlignUp(16, 8) = 16
func AlignUp(n, align int) int {
	return n + AlignPad(n, align)
}
