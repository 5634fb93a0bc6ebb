// Package convolution resolves a chunk's directional neighbors when grid
// resolution may differ across the boundary. Crossing a boundary falls into
// one of three kinds: Normal (same resolution, one neighbor), ChunkDoubling
// (angular chunk count doubles outward or halves inward), or LayerTransition
// (a layer boundary without a chunk-count change). Each resolved neighbor
// carries the index map that translates cell coordinates across the
// boundary, and neighbor lists obey a symmetry contract: if A lists B in a
// direction, B lists A in the opposite direction with the inverse map.
//
// Neighbors are always computed from the immutable topology; chunks never
// hold references to each other.
package convolution
