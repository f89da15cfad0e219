package quality

import (
	"math"
	"strings"
)

// Profile holds the base shader parameters for full quality.
type Profile struct {
	AnimationSpeed float64 `json:"animationSpeed"`
	Complexity     float64 `json:"complexity"`
	Effects        float64 `json:"effects"`
	Samples        float64 `json:"samples"`
}

// Factors holds the shader parameters for a given quality level.
type Factors struct {
	Profile
	RenderScale float64 `json:"resolution"` // Fraction of the full render resolution.
}

var defaultProfile = Profile{AnimationSpeed: 1.0, Complexity: 1.0, Effects: 1.0, Samples: 8}

var profiles = map[string]Profile{
	"gradient":     {AnimationSpeed: 1.5, Complexity: 1.0, Effects: 1.0, Samples: 8},
	"kaleidoscope": {AnimationSpeed: 1.0, Complexity: 1.2, Effects: 1.5, Samples: 12},
	"blur":         {AnimationSpeed: 1.0, Complexity: 1.8, Effects: 2.0, Samples: 12},
	"colorspace":   {AnimationSpeed: 1.0, Complexity: 1.1, Effects: 1.3, Samples: 8},
	"glitch":       {AnimationSpeed: 2.0, Complexity: 1.4, Effects: 1.8, Samples: 10},
}

// ShaderKey strips the conventional fragment_ prefix from a shader id.
func ShaderKey(shaderID string) string {
	return strings.TrimPrefix(shaderID, "fragment_")
}

// BaseProfile returns the full quality parameters for the given shader.
// Unknown shaders use a default profile.
func BaseProfile(shaderID string) Profile {
	if p, ok := profiles[ShaderKey(shaderID)]; ok {
		return p
	}
	return defaultProfile
}

// FactorsFor returns the shader parameters for the given level.
func FactorsFor(level Level, shaderID string) Factors {
	base := BaseProfile(shaderID)

	switch level {
	case Low:
		return Factors{
			Profile: Profile{
				AnimationSpeed: base.AnimationSpeed * 0.5,
				Complexity:     base.Complexity * 0.6,
				Effects:        base.Effects * 0.4,
				Samples:        math.Max(4, base.Samples*0.5),
			},
			RenderScale: 0.75,
		}
	case Medium:
		return Factors{
			Profile: Profile{
				AnimationSpeed: base.AnimationSpeed * 0.8,
				Complexity:     base.Complexity * 0.8,
				Effects:        base.Effects * 0.7,
				Samples:        math.Max(6, base.Samples*0.75),
			},
			RenderScale: 0.9,
		}
	default:
		return Factors{Profile: base, RenderScale: 1.0}
	}
}

// ScalingFactors returns the shader parameters for the current level.
func (c *Controller) ScalingFactors(shaderID string) Factors {
	return FactorsFor(c.level, shaderID)
}

// Uniforms provides access to float uniforms of a material.
type Uniforms interface {
	// Default returns the value the uniform had when the material was created.
	Default(name string) (float32, bool)

	// Set assigns a uniform value. Unknown names are ignored.
	Set(name string, value float32)
}

// Apply scales the material uniforms which respond to quality for the given
// shader. Values are always derived from the material defaults, so repeated
// level changes never compound.
func (c *Controller) Apply(u Uniforms, shaderID string) Factors {
	f := c.ScalingFactors(shaderID)

	if v, ok := u.Default("u_animationSpeed"); ok {
		u.Set("u_animationSpeed", v*float32(f.AnimationSpeed))
	}

	// Effects intensity is relative to the shader's full quality level,
	// the sample count is absolute.
	if v, ok := u.Default("u_effects"); ok {
		u.Set("u_effects", v*float32(f.Effects/BaseProfile(shaderID).Effects))
	}
	if _, ok := u.Default("u_samples"); ok {
		u.Set("u_samples", float32(f.Samples))
	}

	switch ShaderKey(shaderID) {
	case "blur":
		if v, ok := u.Default("u_blurIntensity"); ok {
			u.Set("u_blurIntensity", v*float32(f.Complexity))
		}
	case "kaleidoscope":
		if v, ok := u.Default("u_segments"); ok {
			u.Set("u_segments", float32(math.Max(3, float64(v)*f.Complexity)))
		}
	}

	return f
}
