package mail

import (
	"testing"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "段落换行",
			html: "<p>Hello</p><p>World</p>",
			want: "Hello\n\nWorld",
		},
		{
			name: "行内元素保留空格",
			html: "<p><b>Hello</b> <i>World</i>!</p>",
			want: "Hello World!",
		},
		{
			name: "丢弃脚本和样式",
			html: "<html><head><title>t</title><style>p{color:red}</style></head>" +
				"<body><script>alert(1)</script><div>content</div></body></html>",
			want: "content",
		},
		{
			name: "列表和换行",
			html: "<ul><li>one</li><li>two</li></ul>line1<br>line2",
			want: "- one\n- two\nline1\nline2",
		},
		{
			name: "实体转义",
			html: "<p>a &amp; b &lt; c</p>",
			want: "a & b < c",
		},
		{
			name: "纯文本",
			html: "  just   text  ",
			want: "just text",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, HTMLToText(tc.html))
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	require.NoError(t, err)

	body, err := r.Render(domain.Mail{
		Subject: "Verify", Message: "Use the code below", Kind: domain.MailKindOtp,
		Extras: map[string]any{"Code": "123456", "ExpireMinutes": 5},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "<title>Verify</title>")

	// 用户输入会被转义
	body, err = r.Render(domain.Mail{Subject: "s", Message: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>x</script>")

	// otp 模板缺少参数
	_, err = r.Render(domain.Mail{Subject: "s", Message: "m", Kind: domain.MailKindOtp})
	assert.Error(t, err)
}
