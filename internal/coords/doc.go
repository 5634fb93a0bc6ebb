// Package coords defines the radial coordinate system of a celestial body:
// an onion of concentric layers, each layer a ring of angular chunks, each
// chunk a dense grid of cells. The Directory holds the immutable topology
// and provides pure conversions between hierarchical cell indices and
// continuous polar/Cartesian positions.
//
// Every cell row (concentric circle) has the same radial thickness, the
// cell radius. Angular resolution doubles at configurable layer boundaries
// so cells keep a roughly constant footprint as the circumference grows.
package coords
