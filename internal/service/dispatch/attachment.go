package dispatch

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// decode 按照入队时声明的编码还原附件内容
func decode(content []byte, encoding string) ([]byte, error) {
	switch e := strings.ToLower(encoding); {
	case domain.IsPlainAttachmentEncoding(e):
		return content, nil
	case e == domain.AttachmentEncodingBase64:
		res := make([]byte, base64.StdEncoding.DecodedLen(len(content)))
		n, err := base64.StdEncoding.Decode(res, content)
		if err != nil {
			return nil, fmt.Errorf("%w: 附件 base64 解码失败 %w", errs.ErrInvalidParameter, err)
		}
		return res[:n], nil
	case e == domain.AttachmentEncodingHex:
		res := make([]byte, hex.DecodedLen(len(content)))
		n, err := hex.Decode(res, content)
		if err != nil {
			return nil, fmt.Errorf("%w: 附件 hex 解码失败 %w", errs.ErrInvalidParameter, err)
		}
		return res[:n], nil
	default:
		return nil, fmt.Errorf("%w: 不支持的附件编码 %s", errs.ErrInvalidParameter, encoding)
	}
}
