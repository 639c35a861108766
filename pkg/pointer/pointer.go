// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer bridges values and the optional (*T) fields used by partial
updates and nullable columns.

  - To: Address of a copy of v, for patch literals.
  - Val: Dereference with the zero value for nil, for scanned NULLs.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, or returns the zero value of T when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
