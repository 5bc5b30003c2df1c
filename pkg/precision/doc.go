// Package precision adjusts order prices and sizes to the tick, step and
// minimum constraints of WEEX contract pairs.
//
// All arithmetic is exact decimal arithmetic on apd.Decimal. Prices are
// truncated toward zero to a multiple of the pair's price step, sizes are
// floored to a multiple of the size step, and a size that falls below the
// pair minimum after flooring is rejected rather than raised.
package precision
