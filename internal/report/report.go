package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/cecat/soundviz/internal/aggregate"
	"github.com/cecat/soundviz/internal/model"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Filename prefixes for the generated section images.
const (
	classificationPieName = "classification_distribution_pie.png"
	prefixTimeline        = "cam_timeline_"
	prefixCameraPie       = "cam_pie_"
	prefixGroupPie        = "group_pie_"
)

// topClassCount caps each group's class pie at this many named classes;
// the remainder is folded into an "Other" slice.
const topClassCount = 6

// Data is what the aggregation engine hands the renderer: accumulated
// aggregates, the validated row set, and run accounting. The renderer
// never re-parses raw rows.
type Data struct {
	Totals      aggregate.Partial
	Rows        []model.Record
	Span        model.TimeSpan
	LogPath     string
	TotalRows   int
	ValidRows   int
	InvalidRows int
	Batches     int
}

// legendEntry is one swatch of a section legend.
type legendEntry struct {
	Label string
	Color drawing.Color
}

// section groups the images and legend of one report section. Wide
// sections lay one image per row instead of a two-column grid.
type section struct {
	Title  string
	Images []string
	Legend []legendEntry
	Wide   bool
}

// Renderer writes section images into a plot directory and assembles
// the final PDF.
type Renderer struct {
	plotDir string
}

// NewRenderer creates a renderer writing images under plotDir.
func NewRenderer(plotDir string) *Renderer {
	return &Renderer{plotDir: plotDir}
}

// Generate renders every report section and assembles them at pdfPath.
func (r *Renderer) Generate(data Data, pdfPath string) error {
	if err := r.preparePlotDir(); err != nil {
		return err
	}

	sections := make([]section, 0, 4)
	for _, build := range []func(Data) (section, error){
		r.classificationSection,
		r.timelineSection,
		r.cameraMixSection,
		r.classMixSection,
	} {
		sec, err := build(data)
		if err != nil {
			return err
		}
		if len(sec.Images) > 0 {
			sections = append(sections, sec)
		}
	}

	slog.Info("Assembling PDF", "path", pdfPath, "sections", len(sections))
	return assemblePDF(pdfPath, data, sections)
}

// preparePlotDir creates the plot directory and clears stale images
// from earlier runs.
func (r *Renderer) preparePlotDir() error {
	if err := os.MkdirAll(r.plotDir, 0750); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	stale, err := filepath.Glob(filepath.Join(r.plotDir, "*.png"))
	if err != nil {
		return fmt.Errorf("scan plot directory: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("clear plot directory: %w", err)
		}
	}
	return nil
}

// classificationSection renders the distribution of all classifications
// across groups.
func (r *Renderer) classificationSection(data Data) (section, error) {
	counts := data.Totals.Classifications
	if len(counts) == 0 {
		return section{}, nil
	}
	slog.Info("Creating classification distribution pie", "detections", data.Totals.TotalDetections())

	seen := make(map[string]bool, len(counts))
	for g, c := range counts {
		if c > 0 {
			seen[g] = true
		}
	}
	order := groupOrder(seen)
	extras := extraGroups(order)

	slices := make([]pieSlice, 0, len(order))
	legend := make([]legendEntry, 0, len(order))
	for _, g := range order {
		color := groupColor(g, extras)
		slices = append(slices, pieSlice{Label: g, Count: counts[g], Color: color})
		legend = append(legend, legendEntry{Label: g, Color: color})
	}

	path := filepath.Join(r.plotDir, classificationPieName)
	if err := renderPie(path, "Distribution of All Classifications Across Groups", slices); err != nil {
		return section{}, err
	}
	return section{
		Title:  "Classification Distribution",
		Images: []string{path},
		Legend: legend,
	}, nil
}

// timelineSection renders one stacked hourly event timeline per camera
// over the global hour range, so cameras with quiet stretches still
// show empty hours.
func (r *Renderer) timelineSection(data Data) (section, error) {
	if len(data.Totals.HourlyEvents) == 0 {
		slog.Warn("No event-opening rows; skipping camera timelines")
		return section{}, nil
	}
	slog.Info("Creating event count timelines for each camera")

	seen := make(map[string]bool)
	cameraSet := make(map[string]bool)
	for k := range data.Totals.HourlyEvents {
		seen[k.Group] = true
		cameraSet[k.Camera] = true
	}
	order := groupOrder(seen)
	extras := extraGroups(order)
	cameras := sortedKeys(cameraSet)

	hours := data.Span.Hours()
	hourIndex := make(map[int64]int, len(hours))
	for i, h := range hours {
		hourIndex[h.Unix()] = i
	}

	sec := section{Title: "Hourly Sound Events by Camera", Wide: true}
	for _, g := range order {
		sec.Legend = append(sec.Legend, legendEntry{Label: g, Color: groupColor(g, extras)})
	}

	for idx, camera := range cameras {
		series := make([]timelineSeries, 0, len(order))
		total := 0
		for _, g := range order {
			counts := make([]float64, len(hours))
			for k, v := range data.Totals.HourlyEvents {
				if k.Camera != camera || k.Group != g {
					continue
				}
				if i, ok := hourIndex[k.Hour.Unix()]; ok {
					counts[i] += float64(v)
					total += v
				}
			}
			series = append(series, timelineSeries{
				Group:  g,
				Color:  groupColor(g, extras),
				Counts: counts,
			})
		}
		if total == 0 {
			continue
		}

		path := filepath.Join(r.plotDir, fmt.Sprintf("%s%d.png", prefixTimeline, idx+1))
		title := fmt.Sprintf("Hourly Sound Events by Group for %q", camera)
		if err := renderTimeline(path, title, hours, series); err != nil {
			return section{}, err
		}
		sec.Images = append(sec.Images, path)
	}
	return sec, nil
}

// cameraMixSection renders one event-mix pie per camera.
func (r *Renderer) cameraMixSection(data Data) (section, error) {
	totals := data.Totals.CameraGroupTotals()
	if len(totals) == 0 {
		slog.Warn("No valid data for cameras; skipping camera pies")
		return section{}, nil
	}
	slog.Info("Creating event mix pies for each camera")

	seen := make(map[string]bool)
	for _, byGroup := range totals {
		for g := range byGroup {
			seen[g] = true
		}
	}
	order := groupOrder(seen)
	extras := extraGroups(order)

	sec := section{Title: "Sound Event Mix by Camera"}
	for _, g := range order {
		sec.Legend = append(sec.Legend, legendEntry{Label: g, Color: groupColor(g, extras)})
	}

	for idx, camera := range sortedKeys(totals) {
		byGroup := totals[camera]
		slices := make([]pieSlice, 0, len(order))
		for _, g := range order {
			slices = append(slices, pieSlice{Label: g, Count: byGroup[g], Color: groupColor(g, extras)})
		}
		path := filepath.Join(r.plotDir, fmt.Sprintf("%s%d.png", prefixCameraPie, idx+1))
		if err := renderPie(path, fmt.Sprintf("Sound Event Mix for %s", camera), slices); err != nil {
			return section{}, err
		}
		sec.Images = append(sec.Images, path)
	}
	return sec, nil
}

// classMixSection renders one class-mix pie per group, keeping the top
// classes and folding the tail into "Other".
func (r *Renderer) classMixSection(data Data) (section, error) {
	totals := data.Totals.ClassTotalsByGroup()
	if len(totals) == 0 {
		slog.Warn("No valid data for groups; skipping group pies")
		return section{}, nil
	}
	slog.Info("Creating class mix pies for each group")

	sec := section{Title: "Class Mix by Group"}
	for idx, group := range sortedKeys(totals) {
		byClass := totals[group]

		type classCount struct {
			name  string
			count int
		}
		classes := make([]classCount, 0, len(byClass))
		for name, count := range byClass {
			if count > 0 {
				classes = append(classes, classCount{name: name, count: count})
			}
		}
		if len(classes) == 0 {
			continue
		}
		sort.Slice(classes, func(i, j int) bool {
			if classes[i].count != classes[j].count {
				return classes[i].count > classes[j].count
			}
			return classes[i].name < classes[j].name
		})

		slices := make([]pieSlice, 0, topClassCount+1)
		other := 0
		for i, c := range classes {
			if i < topClassCount {
				slices = append(slices, pieSlice{
					Label: c.name,
					Count: c.count,
					Color: pastelPalette[i%len(pastelPalette)],
				})
				continue
			}
			other += c.count
		}
		if other > 0 {
			slices = append(slices, pieSlice{
				Label: "Other",
				Count: other,
				Color: pastelPalette[topClassCount%len(pastelPalette)],
			})
		}

		path := filepath.Join(r.plotDir, fmt.Sprintf("%s%d.png", prefixGroupPie, idx+1))
		if err := renderPie(path, group, slices); err != nil {
			return section{}, err
		}
		sec.Images = append(sec.Images, path)

		for _, s := range slices {
			sec.Legend = append(sec.Legend, legendEntry{
				Label: fmt.Sprintf("%s: %s", group, displayClass(s.Label)),
				Color: s.Color,
			})
		}
	}
	// Per-group legends repeat the pastel palette; keep only the first
	// group's swatches plus Other to avoid an unreadable legend wall.
	if len(sec.Legend) > topClassCount+1 {
		sec.Legend = sec.Legend[:topClassCount+1]
	}
	return sec, nil
}

func displayClass(class string) string {
	if class == "" {
		return "(none)"
	}
	return class
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
