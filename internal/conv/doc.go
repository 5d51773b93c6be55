// Package conv provides checked integer conversions for fixed-width binary
// headers.
package conv
