// Command fathom opens a window and lets the ambient director explore
// fractals on its own. Catalogs are optional YAML files; built-in defaults
// are used when omitted.
package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/fathom"
)

var flags struct {
	width, height int
	fpsCap        int
	maxScale      float64
	scenesFile    string
	palettesFile  string
	presetsFile   string
	palette       string
	listen        string
	seed          int64
	quiet         bool
}

func main() {
	root := &cobra.Command{
		Use:   "fathom",
		Short: "Ambient escape-time fractal explorer",
		RunE:  run,
	}
	f := root.Flags()
	f.IntVar(&flags.width, "width", 960, "window width")
	f.IntVar(&flags.height, "height", 540, "window height")
	f.IntVar(&flags.fpsCap, "fps-cap", 30, "max compute frames per second")
	f.Float64Var(&flags.maxScale, "max-device-scale", 2.0, "device pixel ratio cap")
	f.StringVar(&flags.scenesFile, "scenes", "", "scene catalog YAML file")
	f.StringVar(&flags.palettesFile, "palettes", "", "palette catalog YAML file")
	f.StringVar(&flags.presetsFile, "presets", "", "focus preset catalog YAML file")
	f.StringVar(&flags.palette, "palette", "", "starting palette name")
	f.StringVar(&flags.listen, "listen", "", "directive websocket address (e.g. :7323)")
	f.Int64Var(&flags.seed, "seed", 0, "deterministic random seed (0 = auto)")
	f.BoolVar(&flags.quiet, "quiet", false, "hide the telemetry overlay")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := fathom.DirectorConfig{
		StartPalette: flags.palette,
		Status: func(s string) {
			log.Printf("director: %s", s)
		},
	}

	if flags.scenesFile != "" {
		data, err := os.ReadFile(flags.scenesFile)
		if err != nil {
			return fmt.Errorf("read scenes: %w", err)
		}
		if cfg.Scenes, err = fathom.LoadSceneCatalog(data); err != nil {
			return err
		}
	}
	if flags.palettesFile != "" {
		data, err := os.ReadFile(flags.palettesFile)
		if err != nil {
			return fmt.Errorf("read palettes: %w", err)
		}
		if cfg.Palettes, err = fathom.LoadPaletteCatalog(data); err != nil {
			return err
		}
	}
	if flags.presetsFile != "" {
		data, err := os.ReadFile(flags.presetsFile)
		if err != nil {
			return fmt.Errorf("read presets: %w", err)
		}
		if cfg.Presets, err = fathom.LoadPresetCatalog(data); err != nil {
			return err
		}
	}
	if flags.seed != 0 {
		cfg.Rand = rand.New(rand.NewPCG(uint64(flags.seed), uint64(flags.seed)>>1|1))
	}

	director, err := fathom.NewDirector(cfg)
	if err != nil {
		return err
	}

	if flags.listen != "" {
		srv := fathom.NewDirectiveServer(director, flags.listen)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("directive server: %v", err)
			}
		}()
		defer srv.Close()
	}

	interval := time.Duration(0)
	if flags.fpsCap > 0 {
		interval = time.Second / time.Duration(flags.fpsCap)
	}

	return fathom.Run(director, fathom.RunConfig{
		Title:             "Fathom",
		Width:             flags.width,
		Height:            flags.height,
		MinRenderInterval: interval,
		MaxDeviceScale:    flags.maxScale,
		ShowOverlay:       !flags.quiet,
	})
}
