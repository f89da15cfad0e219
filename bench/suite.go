package bench

import (
	"log"
	"time"

	"github.com/pkg/errors"
)

// DefaultDuration is the time each shader is measured for.
const DefaultDuration = 3 * time.Second

// SwitchFunc makes the shader with the given id the active one.
type SwitchFunc func(shaderID string) error

// ShaderResult holds the benchmark results of one shader.
type ShaderResult struct {
	Results
	SwitchTimeMs float64 `json:"switchTime"`
}

// Suite benchmarks a list of shaders one after another. It is driven by
// the render loop calling Frame once per frame.
type Suite struct {
	ids      []string
	duration time.Duration
	switchTo SwitchFunc
	now      func() time.Time
	rec      *Recorder
	index    int
	begin    time.Time
	switchMs float64
	running  bool
	results  map[string]ShaderResult
}

// NewSuite creates a suite over the given shaders. A non-positive duration
// uses DefaultDuration and a nil now uses time.Now.
func NewSuite(ids []string, duration time.Duration, switchTo SwitchFunc, now func() time.Time) *Suite {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if now == nil {
		now = time.Now
	}
	return &Suite{
		ids:      append([]string(nil), ids...),
		duration: duration,
		switchTo: switchTo,
		now:      now,
		rec:      NewRecorder(now),
		results:  make(map[string]ShaderResult),
	}
}

// Start switches to the first shader and begins recording.
func (s *Suite) Start() {
	log.Printf("bench: starting benchmark of %d shaders", len(s.ids))
	s.running = true
	s.index = 0
	s.results = make(map[string]ShaderResult)
	s.next()
}

// Running returns true while the suite has shaders left to measure.
func (s *Suite) Running() bool {
	return s.running
}

// Current returns the id of the shader being measured.
func (s *Suite) Current() string {
	if !s.running {
		return ""
	}
	return s.ids[s.index]
}

// Frame records one frame. It returns false once every shader was measured.
func (s *Suite) Frame(fps, frameTimeMs float64) bool {
	if !s.running {
		return false
	}

	s.rec.RecordFrame(fps, frameTimeMs)
	if s.now().Sub(s.begin) < s.duration {
		return true
	}

	s.finish(s.rec.Stop())
	s.index++
	s.next()
	return s.running
}

// Cancel stops the suite. Shaders measured so far keep their results.
func (s *Suite) Cancel() {
	if s.running {
		s.rec.Stop()
		s.running = false
	}
}

// Results returns the results of every measured shader.
func (s *Suite) Results() map[string]ShaderResult {
	out := make(map[string]ShaderResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// next switches to the shader at s.index, skipping those which fail.
func (s *Suite) next() {
	for ; s.index < len(s.ids); s.index++ {
		id := s.ids[s.index]

		t := s.now()
		err := s.switchTo(id)
		s.switchMs = float64(s.now().Sub(t)) / float64(time.Millisecond)

		if err != nil {
			err = errors.Wrapf(err, "bench: switch to %s", id)
			log.Println(err)
			s.results[id] = ShaderResult{
				Results:      Results{Error: err.Error()},
				SwitchTimeMs: s.switchMs,
			}
			continue
		}

		log.Printf("bench: measuring %s", id)
		s.begin = s.now()
		s.rec.Start()
		return
	}

	s.running = false
	log.Printf("bench: finished %d shaders", len(s.results))
}

func (s *Suite) finish(r Results) {
	id := s.ids[s.index]
	s.results[id] = ShaderResult{Results: r, SwitchTimeMs: s.switchMs}
	log.Printf("bench: %s avg %.1f fps (min %.1f, max %.1f, std %.2f)", id, r.FPS.Avg, r.FPS.Min, r.FPS.Max, r.FPS.Std)
}
