package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/hexaflex/shadercube/bench"
	"github.com/hexaflex/shadercube/compat"
	"github.com/hexaflex/shadercube/device"
	"github.com/hexaflex/shadercube/optimizer"
	"github.com/hexaflex/shadercube/quality"
	"github.com/hexaflex/shadercube/render"
	"github.com/hexaflex/shadercube/report"
	"github.com/hexaflex/shadercube/shader"
	"github.com/hexaflex/shadercube/systems"
)

// App defines application context.
type App struct {
	config     *Config             // Application configuration.
	window     *glfw.Window        // OpenGL/GLFW context.
	systems    systems.Map         // Components with a startup/shutdown lifecycle.
	profile    device.Profile      // Capabilities queried at startup.
	loader     *shader.Loader      // Fragment shader sources.
	watcher    *shader.Watcher     // Reports edited shader files; nil without -shaders.
	material   *render.Material    // Live shader program.
	renderer   *render.Renderer    // Draws the cube.
	camera     *render.Camera      // Orbit camera.
	cube       render.Orientation  // Cube rotation.
	quality    *quality.Controller // Adaptive quality.
	optimizer  *optimizer.Optimizer
	compat     *compat.Monitor
	suite      *bench.Suite // Running benchmark, if any.
	benchmark  map[string]bench.ShaderResult
	restore    string // Shader to return to after a benchmark.
	preset     int    // Index into render.Presets of the current shader; -1 for none.
	hud        *HUD
	clock      FrameClock
	time       float64   // Shader time in seconds.
	hudUpdated time.Time // Value used to periodically print the status line.
	cursor     [2]float64
	ids        []string // Fragment shader ids, bound to keys 1-8.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config) *App {
	var a App
	a.config = config
	a.camera = render.NewCamera()
	a.cube.Auto = true
	a.preset = -1
	a.hud = NewHUD(os.Stdout)
	return &a
}

// Run runs the application and does not return until it is finished
// or an error occured during initialization.
func (a *App) Run() error {
	if err := a.initGL(); err != nil {
		return err
	}

	defer a.dispose()

	log.Println(Version())
	printHelp()

	if err := a.initSystems(); err != nil {
		return err
	}

	if err := a.systems.Startup(); err != nil {
		return err
	}

	a.clock.Reset(time.Now())
	for !a.window.ShouldClose() {
		a.mainLoop()
	}

	return nil
}

// initSystems creates all components which depend on the GL context.
func (a *App) initSystems() error {
	a.profile = device.Detect(device.NewGLQuerier(a.window))
	log.Println("device:", a.profile)

	var err error
	a.loader, err = a.newLoader()
	if err != nil {
		return err
	}

	a.ids = a.loader.IDs()
	if len(a.ids) == 0 {
		return errors.New("no fragment shaders found")
	}

	vertex, err := shader.NewBuiltinLoader().Load(context.Background(), shader.VertexID)
	if err != nil {
		return errors.Wrapf(err, "failed to load vertex shader")
	}

	a.compat = compat.New(a.profile)
	a.material = render.NewMaterial(vertex)
	a.material.OnCompileError(func(e *render.CompileError) {
		a.compat.TrackShaderError(e.Source, e.Log)
	})

	a.quality = quality.NewForDevice(quality.Config{
		TargetFPS: a.config.TargetFPS,
		Threshold: a.config.Threshold,
	}, a.profile)

	if a.config.Quality != "auto" {
		level, _ := quality.ParseLevel(a.config.Quality)
		a.quality.SetLevel(level)
	}

	a.quality.OnChange(func(quality.Level, float64) {
		a.applyQuality()
	})

	if err := a.switchShader(a.config.Shader); err != nil {
		log.Println(err)
		if err := a.switchShader(a.ids[0]); err != nil {
			return err
		}
	}

	a.renderer = render.NewRenderer(a.material)
	a.systems.Connect(a.renderer)
	a.applyQuality()

	if a.config.Optimize {
		cfg := optimizer.DefaultConfig()
		cfg.Cooldown = time.Duration(a.config.Cooldown)
		a.optimizer = optimizer.New(cfg, a.profile)
		a.optimizer.Connect(a.loader, a.material)
		a.systems.Connect(a.optimizer)
	}

	if a.config.ShaderDir != "" && a.config.HotReload {
		a.watcher, err = shader.NewWatcher(a.config.ShaderDir)
		if err != nil {
			log.Println(err)
		} else {
			a.systems.Connect(a.watcher)
		}
	}

	return nil
}

// newLoader returns the fragment shader loader for the configured source.
func (a *App) newLoader() (*shader.Loader, error) {
	if a.config.ShaderDir == "" {
		return shader.NewBuiltinLoader(), nil
	}

	paths, err := shader.DirPaths(a.config.ShaderDir)
	if err != nil {
		return nil, err
	}
	return shader.NewLoader(os.DirFS(a.config.ShaderDir), paths), nil
}

// mainLoop performs all main loop operations.
func (a *App) mainLoop() {
	dt := a.clock.Tick(time.Now())
	fps := a.clock.FPS()
	frameTime := a.clock.FrameTime()

	a.time += dt
	a.cube.Update(float32(dt))

	id := a.material.ShaderID()
	a.quality.RecordFrame(fps)
	a.compat.TrackPerformance(id, fps, frameTime)

	if a.optimizer != nil {
		a.optimizer.RecordSample(id, fps, frameTime)
		a.optimizer.Poll()
	}

	if a.suite != nil && !a.suite.Frame(fps, frameTime) {
		a.finishBenchmark()
	}

	a.reloadChanged()
	a.draw()

	// Periodically print a status line.
	interval := time.Duration(a.config.HUDInterval)
	if interval > 0 && time.Since(a.hudUpdated) >= interval {
		a.hudUpdated = time.Now()
		a.printStatus()
	}

	glfw.PollEvents()
}

// draw renders the cube and reports GL errors to the compatibility monitor.
func (a *App) draw() {
	width, height := a.window.GetFramebufferSize()
	err := a.renderer.Draw(a.cube.Model(), a.camera, width, height, float32(a.time))
	if err != nil {
		log.Println(err)
	}

	for _, code := range render.GLErrors() {
		a.compat.TrackGLError(code)
	}

	a.window.SwapBuffers()
}

// switchShader makes the shader with the given id current. The program is
// built by the next draw.
func (a *App) switchShader(id string) error {
	src, err := a.loader.Load(context.Background(), id)
	if err != nil {
		return errors.Wrapf(err, "failed to load shader %s", id)
	}

	a.material.SetShader(id, src)
	a.preset = -1
	a.applyQuality()
	log.Println("shader:", id)
	return nil
}

// benchSwitch is switchShader for the benchmark suite. It compiles right
// away so that compilation counts towards the switch time and a failing
// shader is reported as a failed switch.
func (a *App) benchSwitch(id string) error {
	src, err := a.loader.Load(context.Background(), id)
	if err != nil {
		return errors.Wrapf(err, "failed to load shader %s", id)
	}

	a.preset = -1
	err = a.material.Activate(id, src)
	a.applyQuality()
	return err
}

// applyQuality scales the material uniforms and the render resolution for
// the current quality level.
func (a *App) applyQuality() {
	f := a.quality.Apply(a.material, a.material.ShaderID())
	if a.renderer != nil {
		a.renderer.SetScale(f.RenderScale)
	}
}

// nextPreset applies the next uniform preset of the current shader.
func (a *App) nextPreset() {
	list := render.Presets(a.material.ShaderID())
	if len(list) == 0 {
		return
	}

	a.preset = (a.preset + 1) % len(list)
	a.material.ApplyPreset(list[a.preset])
	a.applyQuality()
	log.Println("preset:", list[a.preset].Name)
}

// resetPreset restores the uniform defaults of the current shader.
func (a *App) resetPreset() {
	a.preset = -1
	a.material.RestoreDefaults()
	a.applyQuality()
	log.Println("preset: defaults")
}

// presetName returns the name of the active preset, if any.
func (a *App) presetName() string {
	list := render.Presets(a.material.ShaderID())
	if a.preset < 0 || a.preset >= len(list) {
		return ""
	}
	return list[a.preset].Name
}

// reloadChanged reloads the current shader if its file changed on disk.
func (a *App) reloadChanged() {
	if a.watcher == nil {
		return
	}

	for {
		select {
		case id := <-a.watcher.Changes():
			a.loader.Forget(id)
			if id != a.material.ShaderID() {
				continue
			}

			src, err := a.loader.Load(context.Background(), id)
			if err != nil {
				log.Println(err)
				continue
			}

			log.Println("shader: reloading", id)
			a.material.SetFragmentShader(src)
			a.material.MarkDirty()
		default:
			return
		}
	}
}

// toggleBenchmark starts a benchmark over all shaders or cancels the
// running one.
func (a *App) toggleBenchmark() {
	if a.suite != nil {
		a.suite.Cancel()
		a.finishBenchmark()
		return
	}

	a.restore = a.material.ShaderID()
	a.suite = bench.NewSuite(a.ids, time.Duration(a.config.BenchDuration), a.benchSwitch, nil)
	a.suite.Start()
}

// finishBenchmark stores the suite results and restores the shader which
// was active before.
func (a *App) finishBenchmark() {
	a.benchmark = a.suite.Results()
	a.suite = nil

	for _, id := range a.ids {
		if r, ok := a.benchmark[id]; ok {
			log.Printf("bench: %-22s %6.1f fps  std %5.2f  switch %.2fms", id, r.FPS.Avg, r.FPS.Std, r.SwitchTimeMs)
		}
	}

	if err := a.switchShader(a.restore); err != nil {
		log.Println(err)
	}
}

// exportReport writes a diagnostic report to the report directory.
func (a *App) exportReport() error {
	doc := report.Document{
		Timestamp: time.Now(),
		Version:   Version(),
		Benchmark: a.benchmark,
	}

	q := a.quality.Report()
	doc.Quality = &q

	c := a.compat.Report()
	doc.Compatibility = &c

	if a.optimizer != nil {
		o := a.optimizer.Export()
		doc.Optimizer = &o
	}

	path, err := report.Write(a.config.ReportDir, report.DefaultPrefix, &doc)
	if err != nil {
		return err
	}

	log.Println("report written to", path)
	return nil
}

// printStatus writes the HUD status line.
func (a *App) printStatus() {
	s := Status{
		Shader:      a.material.ShaderID(),
		Level:       a.quality.Level(),
		FPS:         a.clock.FPS(),
		TargetFPS:   a.quality.TargetFPS(),
		FrameTimeMs: a.clock.FrameTime(),
		Compat:      a.compat.Summary(),
		Fallback:    a.renderer.Fallback(),
		Preset:      a.presetName(),
		Scale:       a.renderer.Scale(),
	}

	if a.optimizer != nil {
		for _, id := range a.optimizer.ActiveRules() {
			s.Rules = append(s.Rules, id.String())
		}
	}

	if a.suite != nil {
		s.Benchmark = a.suite.Current()
	}

	a.hud.Print(s)
}

// dispose ensures openGL/GLFW and other resources are cleaned up.
func (a *App) dispose() {
	if err := a.systems.Shutdown(); err != nil {
		log.Println(err)
	}

	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}

	glfw.Terminate()
}

func (a *App) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	var err error

	switch key {
	case glfw.KeyEscape:
		a.window.SetShouldClose(true)
	case glfw.KeyF1:
		printHelp()
	case glfw.KeySpace:
		a.cube.Auto = !a.cube.Auto
	case glfw.KeyR:
		a.cube.Reset()
		a.camera.Reset()
	case glfw.KeyB:
		a.toggleBenchmark()
	case glfw.KeyX:
		err = a.exportReport()
	case glfw.KeyP:
		if a.suite == nil {
			a.nextPreset()
		}
	case glfw.Key0:
		if a.suite == nil {
			a.resetPreset()
		}
	case glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4, glfw.Key5, glfw.Key6, glfw.Key7, glfw.Key8:
		if n := int(key - glfw.Key1); n < len(a.ids) && a.suite == nil {
			err = a.switchShader(a.ids[n])
		}
	}

	if err != nil {
		log.Println(err)
	}
}

func (a *App) cursorPosCallback(w *glfw.Window, x, y float64) {
	dx := float32(x - a.cursor[0])
	dy := float32(y - a.cursor[1])
	a.cursor = [2]float64{x, y}

	switch {
	case w.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press:
		a.cube.Drag(dx, dy)
	case w.GetMouseButton(glfw.MouseButtonRight) == glfw.Press:
		_, height := w.GetSize()
		a.camera.Pan(dx, dy, float32(height))
	}
}

func (a *App) scrollCallback(_ *glfw.Window, _, yoff float64) {
	a.camera.Zoom(float32(yoff) * 0.5)
}

// initGL initializes GLFW and openGL.
func (a *App) initGL() error {
	err := glfw.Init()
	if err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor

	width := a.config.Width
	height := a.config.Height

	if a.config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()

		width = mode.Width
		height = mode.Height

		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Maximized, glfw.True)
	} else {
		glfw.WindowHint(glfw.Decorated, glfw.True)
		glfw.WindowHint(glfw.Maximized, glfw.False)
	}

	a.window, err = glfw.CreateWindow(width, height, fmt.Sprintf("%s %s", AppName, AppVersion), monitor, nil)
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	a.window.MakeContextCurrent()
	a.window.SetKeyCallback(a.keyCallback)
	a.window.SetCursorPosCallback(a.cursorPosCallback)
	a.window.SetScrollCallback(a.scrollCallback)

	if a.config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	err = gl.Init()
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "gl.Init failed")
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.07, 0.07, 0.1, 1.0)
	return nil
}

// printHelp writes a short overview of supported shortcut keys to stdout.
func printHelp() {
	var sb strings.Builder
	sb.WriteString("shortcut keys:\n")
	sb.WriteString(" ESC      Exit the demo.\n")
	sb.WriteString(" F1       Display this help.\n")
	sb.WriteString(" 1-8      Select a shader.\n")
	sb.WriteString(" P        Apply the next preset of the current shader.\n")
	sb.WriteString(" 0        Restore the shader's default settings.\n")
	sb.WriteString(" SPACE    Start/Stop automatic rotation.\n")
	sb.WriteString(" R        Reset rotation and camera.\n")
	sb.WriteString(" B        Start/Cancel a benchmark of all shaders.\n")
	sb.WriteString(" X        Export a diagnostic report.\n")
	sb.WriteString("mouse:\n")
	sb.WriteString(" left drag   Rotate the cube.\n")
	sb.WriteString(" right drag  Pan the camera.\n")
	sb.WriteString(" wheel       Zoom.")
	log.Println(sb.String())
}
