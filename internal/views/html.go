package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.html"

// Pages lists every view the HTML engine can render.
var Pages = []string{"index", "group", "profile", "post", "new_post", "login", "404"}

var _ fiber.Views = (*HTMLEngine)(nil)

// HTMLEngine renders pages from the embedded templates. Each page file
// defines "title" and "content" blocks that the base layout pulls in.
type HTMLEngine struct {
	mu        sync.RWMutex
	source    fs.FS
	templates map[string]*template.Template
}

func NewHTML() *HTMLEngine {
	return NewHTMLFromFS(templateFS)
}

// NewHTMLFromFS builds an engine over any tree laid out like templates/.
func NewHTMLFromFS(source fs.FS) *HTMLEngine {
	return &HTMLEngine{source: source}
}

func (e *HTMLEngine) Load() error {
	templates := make(map[string]*template.Template, len(Pages))
	for _, name := range Pages {
		tmpl, err := template.New(name).
			Funcs(templateFuncs).
			ParseFS(e.source, layoutFile, "templates/"+name+".html")
		if err != nil {
			return fmt.Errorf("parsing view %q: %w", name, err)
		}
		templates[name] = tmpl
	}

	e.mu.Lock()
	e.templates = templates
	e.mu.Unlock()
	return nil
}

func (e *HTMLEngine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	if err := tmpl.ExecuteTemplate(w, "base", binding); err != nil {
		return fmt.Errorf("rendering view %q: %w", name, err)
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"excerpt": func(p models.Post) string {
		return p.Excerpt()
	},
	"paragraphs": func(text string) []string {
		return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	},
	"selected": func(current string, group models.Group) bool {
		return current == group.Slug
	},
}
