// Package xoshiro256 implements the xoshiro256** scrambler used to spread
// 64-bit digests uniformly before reduction
/*
Translated from
	http://xoshiro.di.unimi.it/xoshiro256starstar.c
	Scrambled Linear Pseudorandom Number Generators
	David Blackman, Sebastiano Vigna
	https://arxiv.org/abs/1805.01407
*/
package xoshiro256

import "math/bits"

// Hash returns the first xoshiro256** output for a state seeded from `seed`
// via splitmix64. Stable across processes and platforms.
func Hash(seed uint64) uint64 {
	s0 := splitmix64(seed)
	s1 := splitmix64(s0)
	return bits.RotateLeft64(s1*5, 7) * 9
}

// http://xoshiro.di.unimi.it/splitmix64.c
func splitmix64(x uint64) uint64 {
	z := x + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
