// Package codeviz renders streamed code as a glowing texture wrapped around
// rotating 3D shapes, built on [Ebitengine].
//
// Text arrives from a [TextSource] on its own goroutine, is merged by a
// [Coalescer] at most every 100 ms, rasterized into a power-of-two
// [PixelBuffer], uploaded as a [Texture], and projected onto a shape's
// [Geometry] every frame.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	src := codeviz.NewScriptSource(codeviz.DefaultSnippets...)
//	err := codeviz.Run(ctx, src, codeviz.DefaultConfig())
//
// The gemini sub-package provides a [TextSource] backed by the Gemini API.
//
// For full control, create a [Visualizer] with [NewVisualizer] and pass it
// to [ebiten.RunGame] yourself; it implements [ebiten.Game].
//
// # Pipeline
//
//   - [Coalescer] keeps the last [MaxDisplayRunes] characters of the stream.
//   - [Rasterizer] draws one line per line break in Go Mono Bold.
//   - [RevealAnimator] computes the top-down "reading" mask used by the sphere.
//   - [OrientationIntegrator] turns frame deltas into rotation and scroll.
//   - [MeshBatch] projects triangles for [ebiten.Image.DrawTriangles].
//
// Shapes are described by [ShapeDescriptor] values returned from [Describe];
// zoom easing uses [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package codeviz
