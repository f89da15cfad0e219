package render

// Preset is a named set of uniform values for one shader.
type Preset struct {
	Name   string
	Values map[string]float32
}

var presets = map[string][]Preset{
	"fragment_gradient": {
		{"Sunset Glow", map[string]float32{"u_colorSpeed": 1.2, "u_brightness": 0.1, "u_contrast": 1.4, "u_colorPalette": 0}},
		{"Ocean Waves", map[string]float32{"u_colorSpeed": 0.8, "u_brightness": -0.05, "u_contrast": 1.2, "u_colorPalette": 1}},
		{"Forest Mist", map[string]float32{"u_colorSpeed": 0.6, "u_brightness": -0.1, "u_contrast": 1.1, "u_colorPalette": 2}},
		{"Fire Burst", map[string]float32{"u_colorSpeed": 2.8, "u_brightness": 0.15, "u_contrast": 1.8, "u_colorPalette": 3}},
		{"Neon City", map[string]float32{"u_colorSpeed": 2.2, "u_brightness": 0.05, "u_contrast": 1.6, "u_colorPalette": 4}},
	},
	"fragment_wave": {
		{"Ocean Waves", map[string]float32{"u_waveFrequency": 12, "u_waveAmplitude": 0.4, "u_waveSpeed": 1.2, "u_waveDirection": 0.3, "u_colorIntensity": 1.0, "u_colorPalette": 0}},
		{"Surf Rider", map[string]float32{"u_waveFrequency": 8, "u_waveAmplitude": 0.8, "u_waveSpeed": 2.5, "u_waveDirection": 0.7, "u_colorIntensity": 1.5, "u_colorPalette": 1}},
		{"Water Drop", map[string]float32{"u_waveFrequency": 25, "u_waveAmplitude": 0.4, "u_waveSpeed": 0.8, "u_waveDirection": 0, "u_colorIntensity": 1.2, "u_colorPalette": 2}},
		{"Electric Storm", map[string]float32{"u_waveFrequency": 35, "u_waveAmplitude": 0.9, "u_waveSpeed": 4.0, "u_waveDirection": 0.5, "u_colorIntensity": 2.0, "u_colorPalette": 3}},
		{"Sound Waves", map[string]float32{"u_waveFrequency": 18, "u_waveAmplitude": 0.6, "u_waveSpeed": 1.8, "u_waveDirection": 0.1, "u_colorIntensity": 1.3, "u_colorPalette": 4}},
	},
	"fragment_bw": {
		{"Classic Film", map[string]float32{"u_waveSpeed": 0.5, "u_waveFrequency": 3, "u_contrast": 0.8}},
		{"Hypnotic Spiral", map[string]float32{"u_waveSpeed": 3.0, "u_waveFrequency": 40, "u_contrast": 2.0}},
		{"Ring Pattern", map[string]float32{"u_waveSpeed": 0.2, "u_waveFrequency": 12, "u_contrast": 1.8}},
		{"Electric Pulse", map[string]float32{"u_waveSpeed": 8.0, "u_waveFrequency": 25, "u_contrast": 1.9}},
		{"Drama Effect", map[string]float32{"u_waveSpeed": 1.0, "u_waveFrequency": 6, "u_contrast": 1.5}},
	},
	"fragment_noise": {
		{"Cloud Drift", map[string]float32{"u_noiseIntensity": 1.2, "u_noiseScale": 2.5, "u_animationSpeed": 0.3, "u_colorMix": 0.6, "u_hueShift": 4.0}},
		{"Mist Effect", map[string]float32{"u_noiseIntensity": 0.8, "u_noiseScale": 5.0, "u_animationSpeed": 0.5, "u_colorMix": 0.3, "u_hueShift": 3.5}},
		{"Stone Texture", map[string]float32{"u_noiseIntensity": 2.5, "u_noiseScale": 8.0, "u_animationSpeed": 0.1, "u_colorMix": 0.2, "u_hueShift": 1.5}},
		{"Lightning", map[string]float32{"u_noiseIntensity": 3.5, "u_noiseScale": 15.0, "u_animationSpeed": 2.5, "u_colorMix": 1.8, "u_hueShift": 5.8}},
		{"Plasma Storm", map[string]float32{"u_noiseIntensity": 4.0, "u_noiseScale": 6.0, "u_animationSpeed": 3.0, "u_colorMix": 1.5, "u_hueShift": 2.0}},
	},
	"fragment_glitch": {
		{"TV Static", map[string]float32{"u_glitchIntensity": 0.3, "u_glitchFrequency": 8, "u_colorSeparation": 0.01, "u_blockSize": 40, "u_scanlineIntensity": 1.5, "u_noiseAmount": 2.0, "u_hueShift": 0.5}},
		{"Digital Decay", map[string]float32{"u_glitchIntensity": 0.7, "u_glitchFrequency": 4, "u_colorSeparation": 0.05, "u_blockSize": 15, "u_scanlineIntensity": 0.8, "u_noiseAmount": 1.5, "u_hueShift": 2.5}},
		{"Data Corruption", map[string]float32{"u_glitchIntensity": 0.9, "u_glitchFrequency": 12, "u_colorSeparation": 0.08, "u_blockSize": 8, "u_scanlineIntensity": 0.5, "u_noiseAmount": 2.8, "u_hueShift": 4.0}},
		{"Game Glitch", map[string]float32{"u_glitchIntensity": 0.5, "u_glitchFrequency": 6, "u_colorSeparation": 0.03, "u_blockSize": 25, "u_scanlineIntensity": 1.2, "u_noiseAmount": 1.0, "u_hueShift": 1.8}},
		{"RGB Split", map[string]float32{"u_glitchIntensity": 0.4, "u_glitchFrequency": 2, "u_colorSeparation": 0.1, "u_blockSize": 50, "u_scanlineIntensity": 0.3, "u_noiseAmount": 0.5, "u_hueShift": 6.0}},
	},
	"fragment_kaleidoscope": {
		{"Classic 6-fold", map[string]float32{"u_segments": 6, "u_rotationSpeed": 1.0, "u_mirrorIntensity": 0.8, "u_centerOffsetX": 0, "u_centerOffsetY": 0, "u_zoom": 1.0}},
		{"Snowflake 8-fold", map[string]float32{"u_segments": 8, "u_rotationSpeed": 0.5, "u_mirrorIntensity": 1.0, "u_centerOffsetX": 0, "u_centerOffsetY": 0, "u_zoom": 1.2}},
		{"Star 12-fold", map[string]float32{"u_segments": 12, "u_rotationSpeed": 2.0, "u_mirrorIntensity": 0.6, "u_centerOffsetX": 0, "u_centerOffsetY": 0, "u_zoom": 0.8}},
		{"Spinning Vortex", map[string]float32{"u_segments": 6, "u_rotationSpeed": 4.0, "u_mirrorIntensity": 0.4, "u_centerOffsetX": 0, "u_centerOffsetY": 0, "u_zoom": 1.5}},
		{"Focused Center", map[string]float32{"u_segments": 8, "u_rotationSpeed": 1.5, "u_mirrorIntensity": 0.9, "u_centerOffsetX": 0.2, "u_centerOffsetY": 0.1, "u_zoom": 2.0}},
	},
	"fragment_colorspace": {
		{"Standard HSV", map[string]float32{"u_colorMode": 0, "u_hueShift": 45, "u_saturation": 1.5, "u_brightness": 0.8, "u_contrast": 1.3, "u_animationSpeed": 1.0}},
		{"RGB Separation", map[string]float32{"u_colorMode": 1, "u_hueShift": 60, "u_saturation": 1.8, "u_brightness": 0.7, "u_contrast": 1.0, "u_animationSpeed": 2.5}},
		{"Complementary", map[string]float32{"u_colorMode": 2, "u_hueShift": 90, "u_saturation": 1.4, "u_brightness": 0.6, "u_contrast": 1.2, "u_animationSpeed": 1.2}},
		{"Posterize", map[string]float32{"u_colorMode": 3, "u_hueShift": 30, "u_saturation": 2.0, "u_brightness": 0.9, "u_contrast": 1.1, "u_animationSpeed": 0.8}},
		{"Color Inversion", map[string]float32{"u_colorMode": 4, "u_hueShift": 120, "u_saturation": 1.6, "u_brightness": 0.5, "u_contrast": 1.4, "u_animationSpeed": 1.5}},
		{"Psychedelic", map[string]float32{"u_colorMode": 5, "u_hueShift": 180, "u_saturation": 2.0, "u_brightness": 0.7, "u_contrast": 1.2, "u_animationSpeed": 3.0}},
	},
	"fragment_blur": {
		{"Portrait Mode", map[string]float32{"u_blurIntensity": 3, "u_blurDirection": 0, "u_focusPoint": 0.5, "u_falloffRange": 0.3, "u_animationSpeed": 0.5, "u_colorShift": 0}},
		{"Motion Blur", map[string]float32{"u_blurIntensity": 7, "u_blurDirection": 45, "u_focusPoint": 0.7, "u_falloffRange": 0.8, "u_animationSpeed": 2.0, "u_colorShift": 0.3}},
		{"Depth of Field", map[string]float32{"u_blurIntensity": 5, "u_blurDirection": 0, "u_focusPoint": 0.3, "u_falloffRange": 0.5, "u_animationSpeed": 1.0, "u_colorShift": 0.1}},
		{"Radial Blur", map[string]float32{"u_blurIntensity": 6, "u_blurDirection": 180, "u_focusPoint": 0.5, "u_falloffRange": 0.7, "u_animationSpeed": 1.5, "u_colorShift": 0.5}},
		{"Artistic Blur", map[string]float32{"u_blurIntensity": 8, "u_blurDirection": 90, "u_focusPoint": 0.8, "u_falloffRange": 0.4, "u_animationSpeed": 2.5, "u_colorShift": 0.8}},
	},
}

// Presets returns the presets of the given shader in display order.
func Presets(shaderID string) []Preset {
	return presets[shaderID]
}

// ApplyPreset assigns the values of p. They replace the defaults of the
// affected uniforms until the shader changes or RestoreDefaults is called,
// so quality scaling works from the preset.
func (m *Material) ApplyPreset(p Preset) {
	for name, v := range p.Values {
		if _, ok := m.defaults[name]; !ok {
			continue
		}
		m.defaults[name] = v
		m.uniforms[name] = v
	}
}

// RestoreDefaults drops any preset and resets every uniform to the value
// the current shader starts with.
func (m *Material) RestoreDefaults() {
	m.defaults = shaderDefaults(m.shaderID)
	m.ResetUniforms()
}
