// Package coerce resolves implicit conversions between mismatched types so values can
// be moved between a declared and an actual type, e.g. a custom numeric type and
// string, or a slice of one element type into a slice of another.
//
// Conversions are declared explicitly by the application (Register, RegisterFunc,
// RegisterAlternates); nothing is discovered by scanning method tables.
//
// Key Components:
//
//   - Registry: Resolution and memoization. Results, including "no conversion", are
//     cached per (source, destination) pair so a miss is never resolved twice and two
//     destinations of one source type never collide.
//
//   - TryGet: Looks up the conversion for a pair, resolving it on first use.
//
//   - Convert: Converts a value, strings always succeed through the formatter.
//
// Metrics:
//
//	flatmsg_coerce_resolve_total counts uncached resolutions,
//	flatmsg_coerce_cache_hit_total counts memoized lookups.
//
// Thread Safety:
//
//	The registry is safe for concurrent use. Two racing first lookups of a pair both
//	resolve it; the results are identical and the last store wins.
package coerce
