package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/filterline/go-filterline/internal/store"
	"github.com/filterline/go-filterline/pkg/filterline/measure"
)

// SVGDrawer is a drawer that creates a DOT file with the pipeline graph:
// filters as vertices, execution order as edges.
type SVGDrawer struct {
	graph       graph.Graph[string, string]
	store       store.CustomStore[string, string]
	filters     map[string]struct{}
	svgFileName string
}

// NewSVGDrawer creates a new SVG drawer.
func NewSVGDrawer(svgFileName string) *SVGDrawer {
	st := store.NewMemoryStore[string, string]()

	return &SVGDrawer{
		svgFileName: svgFileName,
		graph:       graph.NewWithStore[string, string](graph.StringHash, st, graph.Directed()),
		store:       st,
		filters:     make(map[string]struct{}),
	}
}

// AddFilter adds a filter vertex to the pipeline graph. A filter shared
// between several targets shows up as one vertex; re-adding it is a no-op.
func (d *SVGDrawer) AddFilter(filterName string) error {
	err := d.graph.AddVertex(filterName)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.filters[filterName] = struct{}{}

	return nil
}

// AddLink adds an execution-order link between two filters. Links repeated
// across targets are collapsed into one edge.
func (d *SVGDrawer) AddLink(parentFilterName, childFilterName string) error {
	err := d.graph.AddEdge(parentFilterName, childFilterName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentFilterName, childFilterName)
	}

	return nil
}

// Draw creates a file with the pipeline graph.
func (d *SVGDrawer) Draw() error {
	file, err := os.Create(d.svgFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.svgFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.svgFileName)
	}

	return nil
}

// SetTotalTime sets the total time label on a vertex.
func (d *SVGDrawer) SetTotalTime(filterName string, startTime time.Time) error {
	if _, _, err := d.graph.VertexWithProperties(filterName); err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	elapsed := time.Since(startTime).String()
	d.store.UpdateVertex(filterName, func(p *graph.VertexProperties) {
		p.Attributes["xlabel"] = elapsed
	})

	return nil
}

const maxRGB = 240

// AddMeasure overlays per-filter average durations onto the graph: the
// average becomes the vertex label, the vertex colour scales from blue
// (fastest) to red (slowest), and the vertex weight carries the average for
// SlowestFilters.
func (d *SVGDrawer) AddMeasure(msr measure.Measure) error {
	allElapsed := make(map[time.Duration]string)
	sortedAllElapsed := []time.Duration{}

	for name, mt := range msr.AllMetrics() {
		if _, ok := d.filters[name]; !ok {
			continue
		}

		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		if _, ok := allElapsed[avg]; !ok {
			allElapsed[avg] = ""

			sortedAllElapsed = append(sortedAllElapsed, avg)
		}
	}

	if len(sortedAllElapsed) == 0 {
		return nil
	}

	sort.Slice(sortedAllElapsed, func(i, j int) bool {
		return sortedAllElapsed[i] > sortedAllElapsed[j]
	})

	maxValue := sortedAllElapsed[0]
	minValue := sortedAllElapsed[len(sortedAllElapsed)-1]

	for curr := range allElapsed {
		fraction := time.Duration(1)
		if maxValue > minValue {
			fraction = (curr - minValue) / (maxValue - minValue)
		}

		red := maxRGB * fraction
		blue := -maxRGB*fraction + maxRGB

		heatColor, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		allElapsed[curr] = heatColor.ToHEX().String()
	}

	return d.updateMetrics(msr, allElapsed)
}

func (d *SVGDrawer) updateMetrics(msr measure.Measure, allElapsed map[time.Duration]string) error {
	for name, mt := range msr.AllMetrics() {
		if _, ok := d.filters[name]; !ok {
			continue
		}

		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		label := avg.String()
		if mt.GetTotalDuration() > 0 {
			label += ", end: " + mt.GetTotalDuration().String()
		}

		d.store.UpdateVertex(name, func(p *graph.VertexProperties) {
			p.Attributes["xlabel"] = label
			p.Attributes["color"] = allElapsed[avg]
			p.Weight = int(avg)
		})
	}

	return nil
}

// Flow describes one filter on the start-to-end path together with its
// headroom: the gap between its average duration and maxAvg.
type Flow struct {
	FilterName string
	Headroom   int64
}

// SlowestFilters walks the start-to-end path and returns its filters sorted
// by headroom, smallest first, so the slowest filters come out on top. Call
// it after AddMeasure has attached the vertex weights.
func (d *SVGDrawer) SlowestFilters(startName, endName string, maxAvg time.Duration) ([]Flow, error) {
	path, err := graph.ShortestPath(d.graph, startName, endName)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute pipeline path")
	}

	flows := make([]Flow, 0, len(path))
	for _, filterName := range path {
		_, properties, err := d.graph.VertexWithProperties(filterName)
		if err != nil {
			return nil, errors.Wrap(err, "unable to get vertex properties")
		}

		f := Flow{FilterName: filterName}
		if properties.Weight > 0 {
			f.Headroom = int64(maxAvg) - int64(properties.Weight)
		}
		flows = append(flows, f)
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Headroom < flows[j].Headroom
	})

	return flows, nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [DOT] method.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceProperties.Attributes, "xlabel")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
