package templates

import (
	"embed"
	"html/template"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/inkdiff/inkdiff/pkg/diff"
)

var (
	funcMap = map[string]any{
		"fragment_class": fragmentClass,
	}
	Templates = template.Must(
		template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "*.tmpl"),
	)
	//go:embed *
	templateFS embed.FS
)

// fragmentClass maps a fragment's type and move color to a CSS class
// name for file.tmpl to render with.
func fragmentClass(f diff.Fragment) string {
	var class string
	switch f.Type {
	case diff.FragmentEqual:
		class = "equal"
	case diff.FragmentDelete:
		class = "delete"
	case diff.FragmentInsert:
		class = "insert"
	case diff.FragmentMarkLeft, diff.FragmentMarkRight:
		class = "mark"
	default:
		class = "meta"
	}
	if f.Color != 0 {
		class += " moved moved-" + strconv.Itoa(f.Color)
	}
	return class
}

// FileTemplateData is the data passed to file.tmpl to render one diff
// view.
type FileTemplateData struct {
	ID        string
	Fragments []diff.Fragment
	Space     string
	Context   int
	Query     url.Values
}

func (f *FileTemplateData) WithQueryValue(key, value string) string {
	uvCopy := make(url.Values)
	maps.Copy(uvCopy, f.Query)
	if value == "" {
		uvCopy.Del(key)
	} else {
		uvCopy.Set(key, value)
	}
	if len(uvCopy) == 0 {
		return ""
	}
	return "?" + uvCopy.Encode()
}

func (f *FileTemplateData) ContextLinks() template.HTML {
	const (
		minVal = 0
		maxVal = 1000
	)
	smallest := f.Context - 3
	greatest := f.Context + 3
	if smallest < minVal {
		greatest += (minVal - smallest)
		smallest = minVal
	}
	if greatest > maxVal {
		smallest -= (greatest - maxVal)
		greatest = maxVal
	}
	var bld strings.Builder

	for i := smallest; i <= greatest; i++ {
		if bld.Len() != 0 {
			bld.WriteString(" | ")
		}
		if i == f.Context {
			bld.WriteString("<b>" + strconv.Itoa(f.Context) + "</b>")
			continue
		}
		intString := strconv.Itoa(i)
		if intString == "3" {
			intString = ""
		}
		uri := "/" + f.ID + f.WithQueryValue("c", intString)
		bld.WriteString(
			`<a href="` + template.HTMLEscapeString(uri) + `">` +
				strconv.Itoa(i) + `</a>`,
		)
	}
	return template.HTML(bld.String())
}
