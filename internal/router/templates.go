package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"blogicum/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// Views maps the name handlers render to the file under views/.
var Views = []string{
	"blog/index.html",
	"blog/category.html",
	"blog/profile.html",
	"blog/detail.html",
	"blog/create.html",
	"blog/comment.html",
	"blog/user.html",
	"auth/login.html",
	"auth/registration.html",
	"error.html",
}

// TemplateFuncs are available in every view.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"markdown": utils.Markdown,
		"excerpt": func(source string, n int) string {
			return utils.Excerpt(string(utils.Markdown(source)), n)
		},
		"formatDate": func(t time.Time) string {
			return t.UTC().Format("January 2, 2006, 15:04")
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
}

// LoadTemplates builds one template set per view: the layouts, the shared
// includes and the view itself.
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := TemplateFuncs()
	for _, name := range Views {
		r.AddFromFilesFuncs(name, funcMap, assemble(filepath.Join(templatesDir, "views", name))...)
	}
	return r
}
