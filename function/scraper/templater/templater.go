package templater

import (
	"bytes"
	"embed"
	"path"
	"text/template"
)

var (
	//go:embed template/*
	TemplateFile embed.FS

	// CTFDReadme is the README written into every challenge directory.
	CTFDReadme = "template/ctfd/README.md"
)

// Render executes the embedded template src with obj.
func Render(src string, obj interface{}) ([]byte, error) {
	var buf bytes.Buffer
	file, err := template.New(path.Base(src)).Option("missingkey=error").ParseFS(TemplateFile, src)
	if err != nil {
		return nil, err
	}
	if err := file.Execute(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
