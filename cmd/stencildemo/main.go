// Command stencildemo runs a 2D heat diffusion simulation through the
// stencil launcher and writes the final temperature field as a PNG.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/stencil"
	"github.com/gogpu/stencil/backend"

	// Register the CPU backend.
	_ "github.com/gogpu/stencil/backend/cpu"
)

func main() {
	var (
		size    = flag.Int("size", 128, "grid cells per side")
		steps   = flag.Int("steps", 400, "diffusion steps")
		alpha   = flag.Float64("alpha", 0.2, "diffusion coefficient (stable below 0.25)")
		overlap = flag.Bool("overlap", true, "overlap boundary work with the bulk launch")
		scale   = flag.Int("scale", 4, "output upscale factor")
		output  = flag.String("output", "heat.png", "output file")
	)
	flag.Parse()

	n := *size
	b := backend.Get(backend.BackendCPU)
	if b == nil {
		log.Fatal("cpu backend not registered")
	}
	if err := b.Init(); err != nil {
		log.Fatalf("Failed to init backend: %v", err)
	}
	defer b.Close()

	// Fields are halo padded: array cell (x+1, y+1) holds coordinate (x, y).
	stride := n + 2
	at := func(x, y int) int { return (x+1)*stride + (y + 1) }
	src := make([]float64, stride*stride)
	dst := make([]float64, stride*stride)

	// Hot square in the middle as the initial condition.
	for x := n/2 - n/8; x < n/2+n/8; x++ {
		for y := n/2 - n/8; y < n/2+n/8; y++ {
			src[at(x, y)] = 1
		}
	}

	k, err := b.Compile(backend.Program{
		Label: "heat2d",
		Func: func(idx []int, args []any) {
			x, y := idx[0], idx[1]
			if x < 0 || x >= n || y < 0 || y >= n {
				return // ghost cells belong to the boundary
			}
			in := args[0].([]float64)
			out := args[1].([]float64)
			c := at(x, y)
			lap := in[at(x-1, y)] + in[at(x+1, y)] + in[at(x, y-1)] + in[at(x, y+1)] - 4*in[c]
			out[c] = in[c] + *alpha*lap
		},
	}, nil)
	if err != nil {
		log.Fatalf("Failed to compile kernel: %v", err)
	}

	g, err := stencil.NewRegularGrid([]int{n, n}, []float64{1, 1})
	if err != nil {
		log.Fatalf("Failed to create grid: %v", err)
	}

	var opts []stencil.LauncherOption
	if *overlap {
		opts = append(opts, stencil.WithOverlap(1, 1))
	}
	l, err := stencil.NewLauncher(b, g, opts...)
	if err != nil {
		log.Fatalf("Failed to create launcher: %v", err)
	}
	defer l.Close()

	// Insulated walls: ghost cells mirror the adjacent interior cell, so
	// no heat crosses the domain edge.
	bc := stencil.NewBoundaryTable(2).SetAll(
		func(_ context.Context, _ stencil.Grid, dim int, side stencil.Side) error {
			applyMirror(dst, at, n, dim, side)
			return nil
		})

	ctx := context.Background()
	for step := 0; step < *steps; step++ {
		if err := l.Invoke(ctx, g, k, []any{src, dst}, stencil.WithBoundary(bc)); err != nil {
			log.Fatalf("Step %d failed: %v", step, err)
		}
		src, dst = dst, src
	}

	if err := savePNG(*output, src, at, n, *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Heat field saved to %s (%d steps on %dx%d grid)\n", *output, *steps, n, n)
}

// applyMirror copies the outermost interior layer of one domain face into
// the adjacent ghost layer.
func applyMirror(field []float64, at func(x, y int) int, n, dim int, side stencil.Side) {
	ghost, inner := -1, 0
	if side == stencil.High {
		ghost, inner = n, n-1
	}
	for i := 0; i < n; i++ {
		if dim == 0 {
			field[at(ghost, i)] = field[at(inner, i)]
		} else {
			field[at(i, ghost)] = field[at(i, inner)]
		}
	}
}

// savePNG renders the field through a blue-to-red heat palette and
// upscales it with Catmull-Rom resampling.
func savePNG(path string, field []float64, at func(x, y int) int, n, scale int) error {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			img.SetRGBA(x, y, heatColor(field[at(x, y)]))
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, n*scale, n*scale))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, out)
}

// heatColor maps a temperature in [0, 1] to a cold-to-hot gradient.
func heatColor(v float64) color.RGBA {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return color.RGBA{
		R: uint8(255 * v),
		G: uint8(64 * v),
		B: uint8(255 * (1 - v)),
		A: 255,
	}
}
