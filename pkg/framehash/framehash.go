// Package framehash fingerprints a rendered frame so tests can compare
// against a known-good hash instead of diffing a raw 160x144x3 buffer.
package framehash

import "github.com/cespare/xxhash"

// Sum hashes a frame's pixel data in row-major order.
func Sum(frame [144][160][3]uint8) uint64 {
	buf := make([]byte, 0, 144*160*3)
	for _, row := range frame {
		for _, px := range row {
			buf = append(buf, px[0], px[1], px[2])
		}
	}
	return xxhash.Sum64(buf)
}
