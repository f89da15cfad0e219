// Package device describes the capabilities of the machine and graphics
// backend the demo runs on.
//
// A Profile is computed once at startup and never changes afterwards.
// Capabilities are queried through the rendering backend instead of being
// guessed from platform strings.
package device

import (
	"fmt"
	"log"
	"math"
	"runtime"

	"github.com/pkg/errors"
)

// DefaultMemoryGB is assumed when the host memory size can not be determined.
const DefaultMemoryGB = 4

// Features lists optional rendering features.
type Features struct {
	Modern                bool `json:"modern"` // GL 3.0+ context; most of the below are core there.
	FloatTextures         bool `json:"floatTextures"`
	HalfFloatTextures     bool `json:"halfFloatTextures"`
	DepthTextures         bool `json:"depthTextures"`
	Derivatives           bool `json:"derivatives"`
	VertexArrayObject     bool `json:"vertexArrayObject"`
	InstancedArrays       bool `json:"instancedArrays"`
	MultipleRenderTargets bool `json:"multipleRenderTargets"`
	ColorBufferFloat      bool `json:"colorBufferFloat"`
	Anisotropic           bool `json:"textureFilterAnisotropic"`
}

// GPU holds the values reported by a graphics backend.
type GPU struct {
	Renderer            string   `json:"renderer"`
	Vendor              string   `json:"vendor"`
	Version             string   `json:"version"`
	GLSLVersion         string   `json:"shadingLanguageVersion"`
	MaxTextureSize      int      `json:"maxTextureSize"`
	MaxViewportDims     [2]int   `json:"maxViewportDims"`
	MaxVertexAttribs    int      `json:"maxVertexAttribs"`
	MaxFragmentUniforms int      `json:"maxFragmentUniforms"`
	MaxVertexUniforms   int      `json:"maxVertexUniforms"`
	PixelRatio          float64  `json:"pixelRatio"`
	Features            Features `json:"supportedFeatures"`
}

// Querier queries a graphics backend for its capabilities.
type Querier interface {
	Query() (GPU, error)
}

// Profile is an immutable snapshot of device capabilities.
type Profile struct {
	GPU
	Available bool    `json:"available"` // False if no graphics backend could be queried.
	Reason    string  `json:"reason,omitempty"`
	IsMobile  bool    `json:"isMobile"`
	MemoryGB  float64 `json:"memoryGB"`
	Cores     int     `json:"cores"`
	OS        string  `json:"os"`
}

// Detect builds a profile from the host and the given querier.
//
// A nil querier or a failing query does not produce an error. The profile is
// marked unavailable instead, which callers treat as the most conservative
// device class.
func Detect(q Querier) Profile {
	p := Host()

	if q == nil {
		p.Reason = "no graphics backend"
		log.Println("device: no graphics backend; using conservative defaults")
		return p
	}

	gpu, err := q.Query()
	if err != nil {
		p.Reason = errors.Wrap(err, "capability query failed").Error()
		log.Println("device:", p.Reason)
		return p
	}

	p.GPU = gpu
	p.Available = true
	return p
}

// Host returns a profile containing only host information.
func Host() Profile {
	mem, ok := hostMemoryGB()
	if !ok {
		mem = DefaultMemoryGB
	}
	mem = MemoryBucket(mem)

	cores := runtime.NumCPU()
	if cores < 1 {
		cores = 1
	}

	return Profile{
		IsMobile: isMobileOS(runtime.GOOS),
		MemoryGB: mem,
		Cores:    cores,
		OS:       runtime.GOOS,
		GPU:      GPU{PixelRatio: 1},
	}
}

// MemoryBucket rounds a memory size in gigabytes to the nearest power of
// two, so that the installed size is reported instead of what the kernel
// leaves usable. Ties round down.
func MemoryBucket(gb float64) float64 {
	if gb <= 0 {
		return 0
	}
	lo := math.Exp2(math.Floor(math.Log2(gb)))
	hi := lo * 2
	if hi-gb < gb-lo {
		return hi
	}
	return lo
}

func (p Profile) String() string {
	kind := "desktop"
	if p.IsMobile {
		kind = "mobile"
	}
	if !p.Available {
		return fmt.Sprintf("%s, no gpu (%s), %.0fGB, %d cores", kind, p.Reason, p.MemoryGB, p.Cores)
	}
	return fmt.Sprintf("%s, %s, %.0fGB, %d cores, max texture %d", kind, p.Renderer, p.MemoryGB, p.Cores, p.MaxTextureSize)
}

func isMobileOS(goos string) bool {
	return goos == "android" || goos == "ios"
}
