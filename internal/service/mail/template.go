package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer 渲染内置的 HTML 模板
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("mail").Option("missingkey=error").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析邮件模板失败 %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

type templateData struct {
	Subject string
	Message string
	Extras  map[string]any
}

func (r *Renderer) Render(m domain.Mail) (string, error) {
	name := m.TemplateName()
	if r.tpl.Lookup(name) == nil {
		return "", fmt.Errorf("%w: 模板 %s 不存在", errs.ErrInvalidParameter, name)
	}
	extras := m.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	var buf bytes.Buffer
	err := r.tpl.ExecuteTemplate(&buf, name, templateData{
		Subject: m.Subject,
		Message: m.Message,
		Extras:  extras,
	})
	if err != nil {
		return "", fmt.Errorf("%w: 渲染模板 %s 失败 %w", errs.ErrInvalidParameter, name, err)
	}
	return buf.String(), nil
}
