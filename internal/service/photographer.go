package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ZuhairGhias/joycam/internal/debug"
	"github.com/ZuhairGhias/joycam/internal/hw/camera"
	"github.com/ZuhairGhias/joycam/internal/logic/geometry"
	"github.com/ZuhairGhias/joycam/internal/vision"
)

// timestampLayout produces filesystem-safe capture timestamps,
// e.g. "2024-01-01_00.00.00".
const timestampLayout = "2006-01-02_15.04.05"

// requestKind tags the two request variants multiplexed over the
// photographer's queue.
type requestKind int

const (
	detectionUpdate requestKind = iota
	captureTrigger
)

// request is a tagged work item: either a detection-cache update or a
// capture trigger carrying the camera handle.
type request struct {
	kind       requestKind
	detections []vision.Detection
	geometry   vision.FrameGeometry
	camera     camera.Camera
}

// CaptureEvent describes one completed capture, for observers (web feed).
type CaptureEvent struct {
	Timestamp string  `json:"timestamp"`
	Faces     int     `json:"faces"`
	MaxJoy    float64 `json:"max_joy"`
	File      string  `json:"file"`
}

// Photographer captures, annotates, crops and persists photographs.
// The detection cache and all filesystem work live on the consumer
// goroutine; callers only enqueue.
type Photographer struct {
	worker *Worker[request]

	format        string
	folder        string
	saveAnnotated bool
	labelFont     font.Face

	// consumer-goroutine state: latest detections and their frame geometry
	detections []vision.Detection
	geometry   vision.FrameGeometry

	now    func() time.Time
	notify func(CaptureEvent)
}

// NewPhotographer starts the photographer service. format must be one of
// "jpeg", "png", "bmp"; anything else is a configuration error. The folder
// ("~" supported) is created if missing. notify (optional) is called on the
// consumer goroutine after each completed capture.
func NewPhotographer(format, folder string, saveAnnotated bool, notify func(CaptureEvent), opts Options) (*Photographer, error) {
	switch format {
	case "jpeg", "png", "bmp":
	default:
		return nil, fmt.Errorf("unsupported image format %q (want jpeg, png or bmp)", format)
	}

	expanded, err := expandHome(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve capture folder: %w", err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("create capture folder: %w", err)
	}

	p := &Photographer{
		format:        format,
		folder:        expanded,
		saveAnnotated: saveAnnotated,
		labelFont:     basicfont.Face7x13,
		now:           time.Now,
		notify:        notify,
	}
	if opts.Name == "" {
		opts.Name = "photographer"
	}
	p.worker = NewWorker(opts, p.process, nil)
	return p, nil
}

// UpdateDetections replaces the cached detection set used by the next
// capture. O(1), never touches storage. Fire-and-forget.
func (p *Photographer) UpdateDetections(dets []vision.Detection, geom vision.FrameGeometry) {
	p.worker.Submit(request{kind: detectionUpdate, detections: dets, geometry: geom})
}

// Shoot triggers a capture from the given camera. Fire-and-forget.
func (p *Photographer) Shoot(cam camera.Camera) {
	p.worker.Submit(request{kind: captureTrigger, camera: cam})
}

// Close drains pending work and stops the service.
func (p *Photographer) Close() {
	p.worker.Close()
}

// Err reports the most recent capture failure, if any.
func (p *Photographer) Err() error {
	return p.worker.Err()
}

func (p *Photographer) process(req request) error {
	switch req.kind {
	case detectionUpdate:
		p.detections = req.detections
		p.geometry = req.geometry
		return nil
	case captureTrigger:
		return p.capture(req.camera)
	default:
		return fmt.Errorf("unknown request kind %d", req.kind)
	}
}

func (p *Photographer) capture(cam camera.Camera) error {
	timestamp := p.now().Format(timestampLayout)

	var raw []byte
	err := func() error {
		defer debug.Stopwatch("Taking photo")()
		var err error
		raw, err = cam.Capture()
		return err
	}()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	// Persist the raw capture first. A later artifact failure must not
	// undo this, and an original-save failure must not stop the crops.
	original := p.makeFilename(timestamp, "")
	func() {
		defer debug.Stopwatch("Saving original %s", original)()
		if err := os.WriteFile(original, raw, 0o644); err != nil {
			debug.Errorf("saving original %s: %v", original, err)
			return
		}
		debug.Shot(original)
	}()

	if len(p.detections) == 0 {
		p.emit(timestamp, original)
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode capture: %w", err)
	}

	bounds := img.Bounds()
	sx, sy := geometry.ScaleFactors(bounds.Dx(), bounds.Dy(), p.geometry.Width, p.geometry.Height)
	debug.Verbose("Scale factors: sx=%.4f sy=%.4f (image %dx%d, inference %dx%d)",
		sx, sy, bounds.Dx(), bounds.Dy(), p.geometry.Width, p.geometry.Height)

	overlay := image.NewRGBA(bounds)
	draw.Draw(overlay, bounds, img, bounds.Min, draw.Src)

	for i, det := range p.detections {
		scaled := det.Box.Scale(sx, sy)
		rect := scaled.Corners().Round().Intersect(bounds)
		if rect.Empty() {
			debug.Errorf("detection %d scales to an empty region, skipped", i)
			continue
		}

		cropped := p.makeFilename(timestamp, croppedSuffix(i))
		func() {
			defer debug.Stopwatch("Saving cropped %s", cropped)()
			if err := p.saveImage(crop(img, rect), cropped); err != nil {
				debug.Errorf("saving cropped %s: %v", cropped, err)
			}
		}()

		p.annotate(overlay, scaled, det.JoyScore)
	}

	if p.saveAnnotated {
		annotated := p.makeFilename(timestamp, "annotated")
		func() {
			defer debug.Stopwatch("Saving annotated %s", annotated)()
			if err := p.saveImage(overlay, annotated); err != nil {
				debug.Errorf("saving annotated %s: %v", annotated, err)
			}
		}()
	}

	p.emit(timestamp, original)
	return nil
}

func (p *Photographer) emit(timestamp, file string) {
	if p.notify == nil {
		return
	}
	p.notify(CaptureEvent{
		Timestamp: timestamp,
		Faces:     len(p.detections),
		MaxJoy:    vision.MaxJoy(p.detections),
		File:      file,
	})
}

// makeFilename builds "<folder>/<timestamp>[_<suffix>].<format>".
func (p *Photographer) makeFilename(timestamp, suffix string) string {
	name := timestamp
	if suffix != "" {
		name += "_" + suffix
	}
	return p.folder + "/" + name + "." + p.format
}

// croppedSuffix names per-detection crop artifacts: the first keeps the
// plain "cropped" suffix, later ones are numbered.
func croppedSuffix(i int) string {
	if i == 0 {
		return "cropped"
	}
	return fmt.Sprintf("cropped%d", i+1)
}

func (p *Photographer) saveImage(img image.Image, filename string) error {
	var buf bytes.Buffer
	var err error
	switch p.format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	case "bmp":
		err = bmp.Encode(&buf, img)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// annotate draws the bounding rectangle and a filled label strip showing
// the joy score under it. box is already in image coordinates.
func (p *Photographer) annotate(img *image.RGBA, box geometry.Box, joyScore float64) {
	const border = 3
	const margin = 3

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	rect := box.Corners().Round()
	drawRectOutline(img, rect, border, white)

	text := fmt.Sprintf("Joy: %.2f", joyScore)
	metrics := p.labelFont.Metrics()
	textHeight := metrics.Height.Ceil()

	strip := image.Rect(rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y+margin+textHeight+margin)
	draw.Draw(img, strip.Intersect(img.Bounds()), image.NewUniform(white), image.Point{}, draw.Src)

	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(black),
		Face: p.labelFont,
		Dot: fixed.P(
			rect.Min.X+1+margin,
			rect.Max.Y+1+margin+metrics.Ascent.Ceil(),
		),
	}
	drawer.DrawString(text)
}

// drawRectOutline draws a rectangle outline of the given thickness,
// centered on the rectangle edge.
func drawRectOutline(img *image.RGBA, rect image.Rectangle, thickness int, c color.Color) {
	src := image.NewUniform(c)
	half := thickness / 2
	outer := rect.Inset(-half)
	bounds := img.Bounds()

	top := image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+thickness)
	bottom := image.Rect(outer.Min.X, outer.Max.Y-thickness, outer.Max.X, outer.Max.Y)
	left := image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+thickness, outer.Max.Y)
	right := image.Rect(outer.Max.X-thickness, outer.Min.Y, outer.Max.X, outer.Max.Y)

	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(img, edge.Intersect(bounds), src, image.Point{}, draw.Src)
	}
}

// crop extracts a region of an image. Decoded JPEG/PNG types support
// SubImage directly; anything else is copied.
func crop(img image.Image, rect image.Rectangle) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// expandHome resolves a leading "~" in a path.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
