package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tilestudio/site/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home.html",
	"products.html",
	"product.html",
	"catalogues.html",
	"about.html",
	"services.html",
	"contact.html",
	"error.html",
}

var templateFuncs = template.FuncMap{
	"label":     label,
	"dimension": dimensionLabel,
	"price":     formatPrice,
	"year":      func() int { return time.Now().Year() },
}

// view is the data passed to the layout. Content is page specific.
type view struct {
	Title       string
	Description string
	Active      string
	Content     any
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return &renderer{pages: pages}
}

// render executes page into a buffer first so that a template error can
// still produce a clean 500.
func (rd *renderer) render(w http.ResponseWriter, status int, page string, v view) error {
	t, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// label turns a slug-like value such as "pool-tiles" into "Pool Tiles".
func label(v string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(v, "-", " "))
}

var dimensionLabels = map[domain.Dimension]string{
	domain.DimMainCategory: "Category",
	domain.DimDesignStyle:  "Design style",
	domain.DimFinish:       "Finish",
	domain.DimApplications: "Application",
	domain.DimSizes:        "Size",
	domain.DimThicknesses:  "Thickness",
	domain.DimBookmatch:    "Bookmatch",
	domain.DimSixFace:      "Six-face printed",
	domain.DimFullBody:     "Full body",
}

func dimensionLabel(d domain.Dimension) string {
	if l, ok := dimensionLabels[d]; ok {
		return l
	}
	return string(d)
}

// formatPrice renders a unit price. Products without a price are quoted on
// request.
func formatPrice(price float64, unit string) string {
	if price <= 0 {
		return "Price on request"
	}
	p := message.NewPrinter(language.English)
	amount := p.Sprintf("%.2f", price)
	if unit == "" {
		return amount
	}
	return amount + " / " + unit
}

func pageURL(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
