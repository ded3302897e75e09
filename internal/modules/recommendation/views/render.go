package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strconv"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

var pageTmpl *template.Template

var funcs = template.FuncMap{
	"percent": func(v float64) string {
		return strconv.Itoa(int(math.Round(v*100))) + "%"
	},
}

// loadTemplatesFromFS parses the page and partial templates under dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pageTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model for the landing page.
type IndexData struct {
	Loaded       bool
	SpeciesCount int
	LastUpdated  string
	Strategy     string
	DefaultTopN  int
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if pageTmpl == nil {
		return errors.New("templates not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RecommendationsData is the view model for the results partial. A non-empty
// Message replaces the table.
type RecommendationsData struct {
	Recommendations []recommend.Recommendation
	Message         string
}

// RenderRecommendationsPartial executes only the results partial into w.
// Use for HTMX fragment refresh.
func RenderRecommendationsPartial(w io.Writer, data *RecommendationsData) error {
	if pageTmpl == nil {
		return errors.New("templates not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "recommendations.html", data)
}
