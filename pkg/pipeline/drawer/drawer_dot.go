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

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/measure"
)

var ErrFileNameMustBeSet = errors.New("file name must be set")

// DOTDrawer is a drawer that creates a DOT file with the pipeline graph.
type DOTDrawer struct {
	graph      graph.Graph[string, string]
	components map[string]struct{}
	fileName   string
}

// NewDOTDrawer creates a new DOT drawer. The file name is only used by Draw.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return &DOTDrawer{
		fileName:   fileName,
		graph:      graph.New(graph.StringHash, graph.Directed()),
		components: make(map[string]struct{}),
	}
}

// AddComponent adds a component to the pipeline graph.
func (d *DOTDrawer) AddComponent(name, label string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("tooltip", label))
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.components[name] = struct{}{}

	return nil
}

// AddLink adds a link between sender and receiver components.
// Several links between the same components are drawn as one edge with all the labels.
func (d *DOTDrawer) AddLink(senderName, receiverName, label string) error {
	err := d.graph.AddEdge(senderName, receiverName, graph.EdgeAttribute("label", label))
	if err == nil {
		return nil
	}
	if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", senderName, receiverName)
	}

	edge, err := d.graph.Edge(senderName, receiverName)
	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", senderName, receiverName)
	}
	err = d.graph.UpdateEdge(senderName, receiverName,
		graph.EdgeAttribute("label", edge.Properties.Attributes["label"]+`\n`+label),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to update edge from %s to %s", senderName, receiverName)
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DOTDrawer) Draw() error {
	if d.fileName == "" {
		return ErrFileNameMustBeSet
	}
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = d.DrawTo(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return nil
}

// DrawTo writes the pipeline graph to wrt.
func (d *DOTDrawer) DrawTo(wrt io.Writer) error {
	return dot(d.graph, wrt, GraphAttribute("rankdir", "LR"))
}

// SetTotalTime sets the total time for the component.
func (d *DOTDrawer) SetTotalTime(name string, totalTime time.Duration) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", name)
	}

	properties.Attributes["xlabel"] = "end: " + totalTime.String()

	return nil
}

const maxRGB = 240

// AddMeasure adds measure to drawer.
// Links are coloured from blue for the shortest average wait to red for the longest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	allWaits := make(map[time.Duration]string)
	sortedWaits := []time.Duration{}

	for _, mt := range msr.AllMetrics() {
		for _, info := range mt.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}
			if _, ok := allWaits[info.Elapsed]; ok {
				continue
			}
			allWaits[info.Elapsed] = ""
			sortedWaits = append(sortedWaits, info.Elapsed)
		}
	}

	sort.Slice(sortedWaits, func(i, j int) bool {
		return sortedWaits[i] > sortedWaits[j]
	})

	if len(sortedWaits) > 0 {
		maxValue := sortedWaits[0]
		minValue := sortedWaits[len(sortedWaits)-1]
		for curr := range allWaits {
			fraction := 1.0
			if maxValue > minValue {
				fraction = float64(curr-minValue) / float64(maxValue-minValue)
			}

			red := maxRGB * fraction
			blue := maxRGB - red

			colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
			if err != nil {
				return errors.Wrap(err, "unable to get colour")
			}

			allWaits[curr] = colour.ToHEX().String()
		}
	}

	err := d.updateMetrics(msr, allWaits)
	if err != nil {
		return errors.Wrap(err, "unable to update metrics")
	}

	return nil
}

func (d *DOTDrawer) updateMetrics(msr measure.Measure, allWaits map[time.Duration]string) error {
	for name, mt := range msr.AllMetrics() {
		if _, ok := d.components[name]; !ok {
			continue
		}
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		xlabel := ""
		if avg := mt.AVGDuration(); avg != 0 {
			xlabel = avg.String()
		}
		if mt.GetTotalDuration() > 0 {
			if xlabel != "" {
				xlabel += ", "
			}
			xlabel += "end: " + mt.GetTotalDuration().String()
		}
		if xlabel != "" {
			properties.Attributes["xlabel"] = xlabel
		}

		for sender, info := range mt.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}
			if _, err := d.graph.Edge(sender, name); err != nil {
				continue
			}

			err := d.graph.UpdateEdge(sender, name,
				graph.EdgeAttribute("xlabel", info.Elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", allWaits[info.Elapsed]), //nolint
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
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

	vertices := make([]K, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}
	sort.Slice(vertices, func(i, j int) bool {
		return fmt.Sprint(vertices[i]) < fmt.Sprint(vertices[j])
	})

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))
		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceAttributes, "xlabel")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		targets := make([]K, 0, len(adjacencyMap[vertex]))
		for target := range adjacencyMap[vertex] {
			targets = append(targets, target)
		}
		sort.Slice(targets, func(i, j int) bool {
			return fmt.Sprint(targets[i]) < fmt.Sprint(targets[j])
		})

		for _, target := range targets {
			edge := adjacencyMap[vertex][target]
			stmt := statement{
				Source:         vertex,
				Target:         target,
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

var _ Drawer = (*DOTDrawer)(nil)
