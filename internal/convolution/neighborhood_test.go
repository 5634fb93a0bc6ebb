package convolution_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsand/internal/convolution"
	"github.com/san-kum/orbsand/internal/coords"
)

// The topology doubles angular resolution at every layer and keeps chunks
// under 576 cells, which forces angular chunk splits at layers 4, 5 and 6
// and radial splits alongside them. That gives every transition kind a
// concrete boundary to exercise.
func contractDirectory() *coords.Directory {
	dir, err := coords.NewDirectory(coords.Params{
		CellRadius:              1.0,
		NumLayers:               7,
		FirstRadialLines:        8,
		SecondConcentricCircles: 2,
		DoublingPeriod:          1,
		MaxChunkCells:           576,
	})
	Expect(err).NotTo(HaveOccurred())
	return dir
}

var allDirections = []convolution.Direction{
	convolution.Inward, convolution.Outward, convolution.Left, convolution.Right,
}

var _ = Describe("Neighborhood", func() {
	var (
		dir *coords.Directory
		nh  *convolution.Neighborhood
	)

	BeforeEach(func() {
		dir = contractDirectory()
		nh = convolution.New(dir)
	})

	It("rejects chunk indices outside the topology", func() {
		_, err := nh.Neighbors(coords.ChunkIdx{I: 99}, convolution.Left)
		Expect(err).To(MatchError(coords.ErrChunkOutOfRange))
	})

	Describe("body edges", func() {
		It("resolves no inward neighbor from the core", func() {
			nbs, err := nh.Neighbors(coords.ChunkIdx{}, convolution.Inward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(BeEmpty())
		})

		It("resolves no outward neighbor beyond the outermost layer", func() {
			outer := dir.MustLayer(dir.NumLayers() - 1)
			c := coords.ChunkIdx{I: outer.Index, J: outer.RadialChunks - 1, K: 0}
			nbs, err := nh.Neighbors(c, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(BeEmpty())
		})
	})

	Describe("lateral neighbors", func() {
		It("wraps around the angular seam", func() {
			l := dir.MustLayer(5)
			Expect(l.AngularChunks).To(BeNumerically(">", 1))

			last := coords.ChunkIdx{I: 5, J: 0, K: l.AngularChunks - 1}
			nbs, err := nh.Neighbors(last, convolution.Left)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(1))
			Expect(nbs[0].Chunk).To(Equal(coords.ChunkIdx{I: 5, J: 0, K: 0}))
			Expect(nbs[0].Kind).To(Equal(convolution.Normal))

			first := coords.ChunkIdx{I: 5, J: 0, K: 0}
			nbs, err = nh.Neighbors(first, convolution.Right)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs[0].Chunk).To(Equal(last))
		})

		It("maps the column past the left edge onto the neighbor's first column", func() {
			l := dir.MustLayer(5)
			nbs, err := nh.Neighbors(coords.ChunkIdx{I: 5, J: 0, K: 0}, convolution.Left)
			Expect(err).NotTo(HaveOccurred())

			past := coords.CellIdx{J: 2, K: l.ChunkWidth()}
			Expect(nbs[0].Map.Apply(past)).To(Equal(coords.CellIdx{J: 2, K: 0}))
		})

		It("is its own lateral neighbor in a single-chunk ring", func() {
			l := dir.MustLayer(1)
			Expect(l.AngularChunks).To(Equal(1))

			c := coords.ChunkIdx{I: 1, J: 0, K: 0}
			nbs, err := nh.Neighbors(c, convolution.Left)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs[0].Chunk).To(Equal(c))
			Expect(nbs[0].Map.OffK).To(Equal(-l.ChunkWidth()))
		})
	})

	Describe("within-layer radial neighbors", func() {
		It("resolves one same-resolution neighbor with a radial offset", func() {
			l := dir.MustLayer(4)
			Expect(l.RadialChunks).To(BeNumerically(">", 1))

			c := coords.ChunkIdx{I: 4, J: 0, K: 0}
			nbs, err := nh.Neighbors(c, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(1))
			Expect(nbs[0].Kind).To(Equal(convolution.Normal))
			Expect(nbs[0].Chunk).To(Equal(coords.ChunkIdx{I: 4, J: 1, K: 0}))
			Expect(nbs[0].Map).To(Equal(convolution.IndexMap{Num: 1, Den: 1, OffJ: -l.ChunkHeight()}))
		})
	})

	Describe("layer transitions", func() {
		It("scales the angular index by two into the finer layer", func() {
			l := dir.MustLayer(1)
			c := coords.ChunkIdx{I: 1, J: l.RadialChunks - 1, K: 0}
			nbs, err := nh.Neighbors(c, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(1))
			Expect(nbs[0].Kind).To(Equal(convolution.LayerTransition))
			Expect(nbs[0].Chunk).To(Equal(coords.ChunkIdx{I: 2, J: 0, K: 0}))
			Expect(nbs[0].Map).To(Equal(convolution.IndexMap{Num: 2, Den: 1, OffJ: -l.ChunkHeight()}))
		})

		It("halves the angular index back into the coarser layer", func() {
			inner := dir.MustLayer(1)
			nbs, err := nh.Neighbors(coords.ChunkIdx{I: 2, J: 0, K: 0}, convolution.Inward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(1))
			Expect(nbs[0].Kind).To(Equal(convolution.LayerTransition))
			Expect(nbs[0].Chunk).To(Equal(coords.ChunkIdx{I: 1, J: inner.RadialChunks - 1, K: 0}))
			Expect(nbs[0].Map).To(Equal(convolution.IndexMap{Num: 1, Den: 2, OffJ: inner.ChunkHeight()}))
		})
	})

	Describe("chunk doubling", func() {
		var (
			coarse      coords.ChunkIdx
			coarseLayer coords.LayerSpec
			fineLayer   coords.LayerSpec
		)

		BeforeEach(func() {
			coarseLayer = dir.MustLayer(3)
			fineLayer = dir.MustLayer(4)
			Expect(fineLayer.AngularChunks).To(Equal(coarseLayer.AngularChunks * 2))
			coarse = coords.ChunkIdx{I: 3, J: coarseLayer.RadialChunks - 1, K: 0}
		})

		It("resolves exactly two finer neighbors outward", func() {
			nbs, err := nh.Neighbors(coarse, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(2))
			for _, nb := range nbs {
				Expect(nb.Kind).To(Equal(convolution.ChunkDoubling))
			}
			Expect(nbs[0].Chunk).To(Equal(coords.ChunkIdx{I: 4, J: 0, K: 0}))
			Expect(nbs[1].Chunk).To(Equal(coords.ChunkIdx{I: 4, J: 0, K: 1}))
		})

		It("covers the coarse span disjointly between the two fine neighbors", func() {
			nbs, err := nh.Neighbors(coarse, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())

			fineW := fineLayer.ChunkWidth()
			for k := 0; k < coarseLayer.ChunkWidth(); k++ {
				src := coords.CellIdx{J: coarseLayer.ChunkHeight(), K: k}
				inRange := 0
				for _, nb := range nbs {
					mapped := nb.Map.Apply(src)
					Expect(mapped.J).To(Equal(0))
					if mapped.K >= 0 && mapped.K < fineW {
						inRange++
					}
				}
				Expect(inRange).To(Equal(1), "coarse column %d must land in exactly one fine chunk", k)
			}
		})

		It("resolves one coarser neighbor inward, offset for odd chunks", func() {
			even, err := nh.Neighbors(coords.ChunkIdx{I: 4, J: 0, K: 0}, convolution.Inward)
			Expect(err).NotTo(HaveOccurred())
			Expect(even).To(HaveLen(1))
			Expect(even[0].Kind).To(Equal(convolution.ChunkDoubling))
			Expect(even[0].Chunk).To(Equal(coarse))
			Expect(even[0].Map.OffK).To(Equal(0))

			odd, err := nh.Neighbors(coords.ChunkIdx{I: 4, J: 0, K: 1}, convolution.Inward)
			Expect(err).NotTo(HaveOccurred())
			Expect(odd).To(HaveLen(1))
			Expect(odd[0].Chunk).To(Equal(coarse))
			Expect(odd[0].Map.OffK).To(Equal(coarseLayer.ChunkWidth() / 2))
		})
	})

	Describe("symmetry contract", func() {
		It("lists every neighbor back in the opposite direction with the inverse map", func() {
			for _, c := range dir.Chunks() {
				for _, d := range allDirections {
					nbs, err := nh.Neighbors(c, d)
					Expect(err).NotTo(HaveOccurred())

					for _, nb := range nbs {
						back, err := nh.Neighbors(nb.Chunk, d.Opposite())
						Expect(err).NotTo(HaveOccurred())

						inv := nb.Map.Inverse()
						found := false
						for _, b := range back {
							if b.Chunk == c && b.Map == inv {
								Expect(b.Kind).To(Equal(nb.Kind))
								found = true
							}
						}
						Expect(found).To(BeTrue(),
							"%v -> %v via %v has no reverse entry", c, nb.Chunk, d)
					}
				}
			}
		})

		It("resolves a non-empty neighbor set everywhere except the body edges", func() {
			outermost := dir.NumLayers() - 1
			for _, c := range dir.Chunks() {
				l := dir.MustLayer(c.I)
				for _, d := range allDirections {
					nbs, err := nh.Neighbors(c, d)
					Expect(err).NotTo(HaveOccurred())

					atInnerEdge := d == convolution.Inward && c.I == 0
					atOuterEdge := d == convolution.Outward &&
						c.I == outermost && c.J == l.RadialChunks-1
					if atInnerEdge || atOuterEdge {
						Expect(nbs).To(BeEmpty())
					} else {
						Expect(nbs).NotTo(BeEmpty(), "%v has no neighbor %v", c, d)
					}
				}
			}
		})
	})

	Describe("with a doubling period above one", func() {
		It("keeps identity-scale layer transitions where resolution holds", func() {
			slow, err := coords.NewDirectory(coords.Params{
				CellRadius:              1.0,
				NumLayers:               4,
				FirstRadialLines:        8,
				SecondConcentricCircles: 2,
				DoublingPeriod:          2,
				MaxChunkCells:           1024,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(slow.MustLayer(1).RadialLines).To(Equal(slow.MustLayer(2).RadialLines))

			snh := convolution.New(slow)
			l := slow.MustLayer(1)
			nbs, err := snh.Neighbors(coords.ChunkIdx{I: 1, J: l.RadialChunks - 1, K: 0}, convolution.Outward)
			Expect(err).NotTo(HaveOccurred())
			Expect(nbs).To(HaveLen(1))
			Expect(nbs[0].Kind).To(Equal(convolution.LayerTransition))
			Expect(nbs[0].Map).To(Equal(convolution.IndexMap{Num: 1, Den: 1, OffJ: -l.ChunkHeight()}))
		})
	})
})
