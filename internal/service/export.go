package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/types"
)

// PDFConverter turns a rendered HTML document into PDF bytes. The conversion
// is an external collaborator; implementations wrap whatever converter the
// deployment provides.
type PDFConverter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// ArtifactStore persists a generated PDF and returns a URL or path the
// client can hand to the platform share sheet.
type ArtifactStore interface {
	Put(ctx context.Context, name string, pdf []byte) (string, error)
}

// ExportResult describes one generated artifact.
type ExportResult struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// ExportService assembles the shareable PDF for a tasting record: load the
// record, build the HTML document, convert it, store the artifact. Export is
// idempotent per invocation and never mutates the record; a failure here
// does not roll back the saved record.
type ExportService struct {
	tastings  *TastingService
	converter PDFConverter
	store     ArtifactStore
}

// NewExportService creates a new ExportService instance
func NewExportService(tastings *TastingService, converter PDFConverter, store ArtifactStore) *ExportService {
	return &ExportService{
		tastings:  tastings,
		converter: converter,
		store:     store,
	}
}

// Export generates a new PDF artifact for the record. Re-running produces a
// fresh artifact, not a mutation of existing state.
func (s *ExportService) Export(ctx context.Context, id int64) (*ExportResult, error) {
	record, err := s.tastings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := BuildHTML(record)
	if err != nil {
		return nil, &types.ExportError{Stage: "render", Err: err}
	}

	pdf, err := s.converter.Convert(ctx, html)
	if err != nil {
		return nil, &types.ExportError{Stage: "convert", Err: err}
	}

	name := fmt.Sprintf("tasting-%d-%s.pdf", record.ID, uuid.New().String())
	url, err := s.store.Put(ctx, name, pdf)
	if err != nil {
		return nil, &types.ExportError{Stage: "store", Err: err}
	}

	return &ExportResult{FileName: name, URL: url}, nil
}

type exportPage struct {
	Name        string
	Origin      string
	Notes       string
	Group       string
	Date        string
	ChartBase64 string
	ChartSVG    template.HTML
	Ratings     []ratingCell
	Flavors     []string
	GeneratedAt string
}

type ratingCell struct {
	Label string
	Value int
}

// BuildHTML assembles the fixed export document: header, metadata, chart,
// ratings grid, flavor tags, optional notes, footer timestamp. The ratings
// grid always holds exactly the five fixed attributes. When no chart capture
// exists the document falls back to an inline SVG radar chart rendered from
// the ratings, so a failed capture degrades instead of blocking the export.
func BuildHTML(record *models.TastingRecord) (string, error) {
	ratings, err := record.Ratings.Normalize()
	if err != nil {
		return "", err
	}

	cells := make([]ratingCell, len(models.RatingAttributes))
	for i, key := range models.RatingAttributes {
		cells[i] = ratingCell{Label: titleCase(key), Value: ratings[key]}
	}

	page := exportPage{
		Name:        record.Name,
		Origin:      record.Origin,
		Notes:       record.Notes,
		Group:       record.GroupLabel(),
		Date:        record.Date.Format("January 2, 2006"),
		Ratings:     cells,
		Flavors:     []string(record.Flavors),
		GeneratedAt: time.Now().UTC().Format(time.RFC1123),
	}

	if record.ChartImage != "" {
		page.ChartBase64 = stripDataURI(record.ChartImage)
	} else {
		page.ChartSVG = radarSVG(ratings)
	}

	var buf bytes.Buffer
	if err := exportTemplate.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// titleCase capitalizes the first letter of an attribute key for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// stripDataURI drops a "data:image/...;base64," prefix if present.
func stripDataURI(s string) string {
	if strings.HasPrefix(s, "data:image") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

// radarSVG renders the five-axis rating profile as an inline SVG radar
// chart. The geometry mirrors the client chart: axes start at twelve
// o'clock and proceed clockwise, rings mark every second rating step.
func radarSVG(ratings models.RatingsMap) template.HTML {
	const (
		size   = 300.0
		center = size / 2
		radius = 110.0
	)

	axes := models.RatingAttributes
	point := func(axis int, value float64) (float64, float64) {
		angle := 2*math.Pi*float64(axis)/float64(len(axes)) - math.Pi/2
		r := radius * value / models.RatingMax
		return center + r*math.Cos(angle), center + r*math.Sin(angle)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`, size, size, size, size)

	for ring := 2; ring <= models.RatingMax; ring += 2 {
		var pts []string
		for i := range axes {
			x, y := point(i, float64(ring))
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="#FFE8D3" stroke-width="1"/>`, strings.Join(pts, " "))
	}

	for i, axis := range axes {
		x, y := point(i, models.RatingMax)
		fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.1f" y2="%.1f" stroke="#FFE8D3" stroke-width="1"/>`, center, center, x, y)
		lx, ly := point(i, models.RatingMax+1.6)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" fill="#433D3A" text-anchor="middle">%s</text>`, lx, ly, titleCase(axis))
	}

	var pts []string
	for i, axis := range axes {
		x, y := point(i, float64(ratings[axis]))
		pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	fmt.Fprintf(&b, `<polygon points="%s" fill="#FF9432" fill-opacity="0.8" stroke="#FF9432" stroke-width="1"/>`, strings.Join(pts, " "))

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

var exportTemplate = template.Must(template.New("export").Parse(`<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 0; }
  body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; padding: 30px; max-width: 800px; margin: 0 auto; color: #2D3436; line-height: 1.4; }
  .header { text-align: center; margin-bottom: 20px; border-bottom: 3px solid #FF9432; padding-bottom: 15px; }
  .title { font-size: 24px; font-weight: 700; margin: 0; text-transform: uppercase; letter-spacing: 2px; }
  .subtitle { color: #636E72; font-size: 14px; margin-top: 5px; }
  .date { color: #636E72; font-size: 12px; margin-top: 5px; }
  .info-section { background: #FFFFFF; border-radius: 8px; padding: 15px; margin: 20px 0; }
  .section-title { color: #FF9432; font-size: 16px; font-weight: 600; border-bottom: 2px solid #FFE8D3; padding-bottom: 5px; }
  .info-label { font-weight: 600; font-size: 12px; }
  .info-value { color: #636E72; font-size: 12px; }
  .chart-container { max-width: 300px; margin: 15px auto; padding: 15px; background: #FFFFFF; border-radius: 8px; }
  .chart-image { width: 100%; max-width: 250px; display: block; margin: 0 auto; }
  .ratings-grid { display: grid; grid-template-columns: repeat(5, 1fr); gap: 10px; margin-top: 15px; }
  .rating-card { background: #FFF8F1; padding: 10px; border-radius: 6px; text-align: center; }
  .rating-value { font-size: 18px; font-weight: bold; color: #FF9432; }
  .rating-label { color: #636E72; font-size: 11px; text-transform: uppercase; letter-spacing: 0.5px; }
  .flavor-tag { background: #FF9432; color: white; padding: 4px 10px; border-radius: 12px; font-size: 11px; margin-right: 5px; }
  .notes-section { margin-top: 15px; padding: 10px; background: #FFF8F1; border-radius: 6px; border-left: 3px solid #FF9432; }
  .notes-content { font-size: 12px; color: #636E72; }
  .footer { margin-top: 20px; text-align: center; color: #636E72; font-size: 10px; border-top: 1px solid #FFE8D3; padding-top: 10px; }
</style>
</head>
<body>
  <div class="header">
    <h1 class="title">Coffee Tasting</h1>
    <p class="subtitle">Detailed Cupping Analysis</p>
    <p class="date">{{.Date}}</p>
  </div>

  <div class="info-section">
    <h2 class="section-title">Coffee Information</h2>
    <p><span class="info-label">Name:</span> <span class="info-value">{{.Name}}</span></p>
    <p><span class="info-label">Origin:</span> <span class="info-value">{{.Origin}}</span></p>
    <p><span class="info-label">Group:</span> <span class="info-value">{{.Group}}</span></p>
  </div>

  <div class="chart-container">
    <h2 class="section-title">Flavor Profile</h2>
    {{if .ChartBase64}}<img class="chart-image" src="data:image/png;base64,{{.ChartBase64}}" alt="Rating chart"/>{{else}}{{.ChartSVG}}{{end}}
  </div>

  <div class="ratings-grid">
    {{range .Ratings}}<div class="rating-card">
      <div class="rating-value">{{.Value}}/10</div>
      <div class="rating-label">{{.Label}}</div>
    </div>
    {{end}}
  </div>

  {{if .Flavors}}<div class="info-section">
    <h3 class="section-title">Identified Flavors</h3>
    <p>{{range .Flavors}}<span class="flavor-tag">{{.}}</span>{{end}}</p>
  </div>{{end}}

  {{if .Notes}}<div class="notes-section">
    <h3 class="section-title">Taster Notes</h3>
    <p class="notes-content">{{.Notes}}</p>
  </div>{{end}}

  <div class="footer">
    <p>Generated by Cuppa &bull; {{.GeneratedAt}}</p>
  </div>
</body>
</html>`))

// WkhtmltopdfConverter converts HTML through the wkhtmltopdf binary, reading
// the document on stdin and writing the PDF to stdout.
type WkhtmltopdfConverter struct {
	Path string
}

// NewWkhtmltopdfConverter creates a converter using the given binary path,
// defaulting to whatever "wkhtmltopdf" resolves to on PATH.
func NewWkhtmltopdfConverter(path string) *WkhtmltopdfConverter {
	if path == "" {
		path = "wkhtmltopdf"
	}
	return &WkhtmltopdfConverter{Path: path}
}

func (c *WkhtmltopdfConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Path, "--quiet", "--page-size", "A4", "-", "-")
	cmd.Stdin = strings.NewReader(html)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w: %s", err, strings.TrimSpace(errOut.String()))
	}
	return out.Bytes(), nil
}

// LocalArtifactStore writes artifacts to a directory on disk. It is the
// development default; deployments use the S3 store.
type LocalArtifactStore struct {
	Dir string
}

// NewLocalArtifactStore creates a store rooted at dir, creating it if needed.
func NewLocalArtifactStore(dir string) (*LocalArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &LocalArtifactStore{Dir: dir}, nil
}

func (s *LocalArtifactStore) Put(_ context.Context, name string, pdf []byte) (string, error) {
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
