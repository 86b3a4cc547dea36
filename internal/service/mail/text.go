package mail

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLToText 从 HTML 中提取纯文本，块级元素换行，script 和 style 的内容丢弃
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var sb strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF 或者解析失败，都返回已经提取的部分
			return normalize(sb.String())
		case html.TextToken:
			if skip > 0 {
				continue
			}
			sb.WriteString(collapseSpaces(string(z.Text())))
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style, atom.Head:
				if tt == html.StartTagToken {
					skip++
				}
			case atom.Br:
				sb.WriteByte('\n')
			case atom.Li:
				sb.WriteString("\n- ")
			case atom.Td, atom.Th:
				sb.WriteByte('\t')
			default:
				if isBlock(tok.DataAtom) {
					sb.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style, atom.Head:
				if skip > 0 {
					skip--
				}
			default:
				if isBlock(tok.DataAtom) {
					sb.WriteByte('\n')
				}
			}
		default:
		}
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Table, atom.Tr, atom.Ul, atom.Ol,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Hr, atom.Section, atom.Article,
		atom.Header, atom.Footer:
		return true
	default:
		return false
	}
}

// collapseSpaces 连续空白合并成一个空格，首尾的空白也保留一个，避免相邻的行内元素粘在一起
func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	res := strings.Join(fields, " ")
	if isSpace(s[0]) {
		res = " " + res
	}
	if isSpace(s[len(s)-1]) {
		res += " "
	}
	return res
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// normalize 去掉每一行首尾的空白，连续空行只保留一个
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	res := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(res) > 0 {
				res = append(res, "")
			}
			blank = true
			continue
		}
		blank = false
		res = append(res, line)
	}
	return strings.TrimSpace(strings.Join(res, "\n"))
}
