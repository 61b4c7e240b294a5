package fathom

import "testing"

func TestDefaultScenesValid(t *testing.T) {
	if err := ValidateSceneCatalog(DefaultScenes()); err != nil {
		t.Fatalf("built-in catalog invalid: %v", err)
	}
}

func TestValidateSceneCatalogErrors(t *testing.T) {
	base := func() []SceneDef { return longScenes() }

	one := base()[:1]
	if err := ValidateSceneCatalog(one); err == nil {
		t.Error("single-scene catalog accepted")
	}

	dup := base()
	dup[1].Name = dup[0].Name
	if err := ValidateSceneCatalog(dup); err == nil {
		t.Error("duplicate scene name accepted")
	}

	badDir := base()
	badDir[0].ZoomDirection = 0
	if err := ValidateSceneCatalog(badDir); err == nil {
		t.Error("zoom_direction 0 accepted")
	}

	badDur := base()
	badDur[0].Duration = Range{10, 5}
	if err := ValidateSceneCatalog(badDur); err == nil {
		t.Error("inverted duration range accepted")
	}

	badTarget := base()
	badTarget[0].TargetScale = Range{MinScale / 10, 1}
	if err := ValidateSceneCatalog(badTarget); err == nil {
		t.Error("target below MinScale accepted")
	}
}

func TestLoadSceneCatalogYAML(t *testing.T) {
	data := []byte(`
- name: dive
  duration: {min: 20, max: 40}
  zoom_direction: 1
  zoom_speed: {min: 0.05, max: 0.1}
  target_scale: {min: 1.0e-8, max: 1.0e-5}
  shift_intensity: 0.3
  palette_bias: [ember]
- name: surface
  duration: {min: 10, max: 15}
  zoom_direction: -1
  zoom_speed: {min: 0.1, max: 0.2}
  target_scale: {min: 0.5, max: 3.0}
  shift_intensity: 0.8
`)
	scenes, err := LoadSceneCatalog(data)
	if err != nil {
		t.Fatalf("LoadSceneCatalog: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("len = %d, want 2", len(scenes))
	}
	if scenes[0].Name != "dive" || scenes[0].ZoomDirection != ZoomIn {
		t.Errorf("scenes[0] = %+v", scenes[0])
	}
	if scenes[1].ZoomDirection != ZoomOut {
		t.Errorf("scenes[1].ZoomDirection = %d, want -1", scenes[1].ZoomDirection)
	}
	if scenes[0].PaletteBias[0] != "ember" {
		t.Errorf("palette bias = %v", scenes[0].PaletteBias)
	}
}

func TestPickSceneExcludesCurrent(t *testing.T) {
	scenes := DefaultScenes()
	rng := testRand(40)
	for i := 0; i < 100; i++ {
		idx := pickScene(scenes, rng, "plunge")
		if scenes[idx].Name == "plunge" {
			t.Fatal("pickScene returned the excluded scene")
		}
	}
}
