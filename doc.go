// Package fathom is an ambient escape-time fractal renderer for [Ebitengine].
//
// Fathom continuously renders Mandelbrot-family and Julia fractals while an
// autonomous director perpetually evolves zoom depth, color palette, fractal
// variant, and focus point. No input is required, though every director
// control also accepts direct manual overrides.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window, render
// engine, and game loop for you:
//
//	director, err := fathom.NewDirector(fathom.DirectorConfig{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fathom.Run(director, fathom.RunConfig{
//		Title: "Fathom", Width: 960, Height: 540,
//	})
//
// For full control, implement [ebiten.Game] yourself: construct an [Engine]
// with [NewEngine], pass [Director.Compose] as its payload callback, and call
// [Director.Tick] then [Engine.Frame] from your Update with wall-clock
// deltas.
//
// # Architecture
//
// Three layers cooperate:
//
//   - The [Computer] boundary runs escape-time pixel computation on its own
//     goroutine, one request in flight at a time.
//   - The [Engine] paces frames, keeps palette updates strictly ordered ahead
//     of renders, and applies single-slot newest-wins backpressure.
//   - The [Director] owns the view window, ambient oscillators, scene
//     lifecycle, and cooldown-gated mutations, and composes each frame's
//     [RenderRequest].
//
// Scenes, palettes, and focus presets are data: built-in catalogs ship in the
// package ([DefaultScenes], [DefaultPalettes], [DefaultPresets]) and YAML
// catalogs load with [LoadSceneCatalog], [LoadPaletteCatalog], and
// [LoadPresetCatalog].
//
// External automation can drive the same public handlers a user would through
// [DirectiveServer], a small JSON-over-websocket adapter.
//
// [Ebitengine]: https://ebitengine.org
package fathom
