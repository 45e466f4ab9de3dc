package build

import (
	"embed"
	"html/template"
	"io/fs"

	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/theme/funcs"
)

// basicThemeName is the built-in theme used when html_theme is empty.
const basicThemeName = "basic"

//go:embed basic/templates/*.html basic/static/*
var basicFiles embed.FS

// basicTheme is a plain layout that themes may replace. It only relies on
// the variables and functions the builder provides itself.
func basicTheme() host.Theme {
	templates, _ := fs.Sub(basicFiles, "basic/templates")
	static, _ := fs.Sub(basicFiles, "basic/static")
	return host.Theme{Name: basicThemeName, Templates: templates, Static: static}
}

// baseFuncs are the template functions every theme can rely on. They are
// placeholders at parse time; pageFuncs binds them per page.
func baseFuncs() template.FuncMap {
	return pageFuncs("", ".html")
}

func pageFuncs(docname, suffix string) template.FuncMap {
	p := funcs.Page{DocName: docname, Suffix: suffix}
	return template.FuncMap{
		"pathto": func(target string, kind ...int) string {
			return funcs.PathTo(p, target, len(kind) > 0 && kind[0] == funcs.Resource)
		},
	}
}
