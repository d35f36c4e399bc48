// Package projection renders trip geometry into small normalised SVG
// thumbnails aligned with the trip's principal axis.
package projection

import (
	"math"
	"strconv"
	"strings"

	"raillog.org/engine/internal/geo"
	"raillog.org/engine/internal/geocache"
)

const (
	// HeightPx is the fixed thumbnail height.
	HeightPx = 40.0
	MinRatio = 2.0
	MaxRatio = 8.0
	// DefaultColor is used for paths that carry no color.
	DefaultColor = "#94a3b8"

	padding    = 0.1
	minExtent  = 0.001
	viewWidth  = 100.0
	viewHeight = 50.0

	orientationTol = 1e-9
)

// ColoredPath is one polyline of [lat, lng] points.
type ColoredPath struct {
	Points [][2]float64
	Color  string
}

// Path is a projected polyline inside a 100×50 view box.
type Path struct {
	// D is an SVG path command ("M x,y L x,y ...").
	D        string `json:"path"`
	Polyline string `json:"polyline"`
	Color    string `json:"color"`
	// Points holds the normalised x, y coordinates before formatting.
	Points [][2]float64 `json:"-"`
}

// Projection is a rendered thumbnail.
type Projection struct {
	Paths   []Path  `json:"visualPaths"`
	TotalKm float64 `json:"totalDist"`
	Width   float64 `json:"widthPx"`
	Height  float64 `json:"heightPx"`
}

// SVG joins the path commands of every path.
func (p Projection) SVG() string {
	ds := make([]string, len(p.Paths))
	for i, path := range p.Paths {
		ds[i] = path.D
	}
	return strings.Join(ds, " ")
}

// FromGeometry splits a cached geometry into colored paths.
func FromGeometry(g geocache.Geometry) []ColoredPath {
	out := make([]ColoredPath, 0, len(g.Parts))
	for _, part := range g.Parts {
		out = append(out, ColoredPath{Points: part, Color: g.Color})
	}
	return out
}

// PathKm is the great-circle length of a [lat, lng] polyline.
func PathKm(points [][2]float64) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		total += geo.HaversineKm(a[0], a[1], b[0], b[1])
	}
	return total
}

// Project renders paths. Coordinates are rotated about their centroid so the
// principal axis lies horizontally, then normalised into the view box with
// 10% padding. Rotated copies of the same input render identically, closed
// trips included, unless the points are centrally symmetric.
func Project(paths []ColoredPath) Projection {
	var proj Projection
	var cx, cy float64
	count := 0
	for _, p := range paths {
		proj.TotalKm += PathKm(p.Points)
		for _, pt := range p.Points {
			cx += pt[1]
			cy += pt[0]
			count++
		}
	}
	if count == 0 {
		return proj
	}
	cx /= float64(count)
	cy /= float64(count)

	var u20, u02, u11 float64
	for _, p := range paths {
		for _, pt := range p.Points {
			x, y := pt[1]-cx, pt[0]-cy
			u20 += x * x
			u02 += y * y
			u11 += x * y
		}
	}
	theta := 0.5 * math.Atan2(2*u11, u20-u02)
	r := rotation{cos: math.Cos(-theta), sin: math.Sin(-theta), cx: cx, cy: cy, sign: 1}

	r.sign = orientation(paths, r, math.Sqrt((u20+u02)/float64(count)))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range paths {
		for _, pt := range p.Points {
			x, y := r.apply(pt)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	w, h := maxX-minX, maxY-minY
	if w == 0 {
		w = minExtent
	}
	if h == 0 {
		h = minExtent
	}
	vMinX, vMinY := minX-w*padding, minY-h*padding
	vW, vH := w*(1+2*padding), h*(1+2*padding)

	proj.Height = HeightPx
	proj.Width = HeightPx * geo.Clamp(vW/vH, MinRatio, MaxRatio)
	proj.Paths = make([]Path, 0, len(paths))
	for _, p := range paths {
		color := p.Color
		if color == "" {
			color = DefaultColor
		}
		out := Path{Color: color, Points: make([][2]float64, 0, len(p.Points))}
		strs := make([]string, 0, len(p.Points))
		for _, pt := range p.Points {
			x, y := r.apply(pt)
			px := (x - vMinX) / vW * viewWidth
			py := viewHeight - (y-vMinY)/vH*viewHeight
			out.Points = append(out.Points, [2]float64{px, py})
			strs = append(strs, fixed(px)+","+fixed(py))
		}
		out.Polyline = strings.Join(strs, " ")
		out.D = "M " + strings.Join(strs, " L ")
		proj.Paths = append(proj.Paths, out)
	}
	return proj
}

type rotation struct {
	cos, sin float64
	cx, cy   float64
	// sign -1 turns the result half a turn.
	sign float64
}

// apply rotates a [lat, lng] point about the centroid, with x = lng.
func (r rotation) apply(pt [2]float64) (float64, float64) {
	x, y := pt[1]-r.cx, pt[0]-r.cy
	return r.sign * (x*r.cos - y*r.sin), r.sign * (x*r.sin + y*r.cos)
}

// orientation picks the direction of the principal axis: from the first
// point towards the last, then first above last, and for trips that end
// where they started, towards the side the points are skewed to. scale is
// the RMS distance from the centroid.
func orientation(paths []ColoredPath, r rotation, scale float64) float64 {
	tol := orientationTol * scale
	first, last := firstAndLast(paths)
	fx, fy := r.apply(first)
	lx, ly := r.apply(last)
	if d := lx - fx; math.Abs(d) > tol {
		return math.Copysign(1, d)
	}
	if d := fy - ly; math.Abs(d) > tol {
		return math.Copysign(1, d)
	}

	if scale == 0 {
		return 1
	}
	var sx, sy float64
	n := 0
	for _, p := range paths {
		for _, pt := range p.Points {
			x, y := r.apply(pt)
			x, y = x/scale, y/scale
			sx += x * x * x
			sy += y * y * y
			n++
		}
	}
	sx, sy = sx/float64(n), sy/float64(n)
	switch {
	case math.Abs(sx) > orientationTol:
		return math.Copysign(1, sx)
	case math.Abs(sy) > orientationTol:
		return math.Copysign(1, sy)
	}
	return 1
}

func firstAndLast(paths []ColoredPath) ([2]float64, [2]float64) {
	var first, last [2]float64
	found := false
	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		if !found {
			first = p.Points[0]
			found = true
		}
		last = p.Points[len(p.Points)-1]
	}
	return first, last
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
