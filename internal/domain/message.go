package domain

// Message 交给供应商发送的最终内容，附件已经下载并解码
type Message struct {
	NotificationID uint64
	Type           NotificationType
	From           string
	To             string
	Subject        string
	Text           string
	HTML           string
	Attachments    []ResolvedAttachment
}

type ResolvedAttachment struct {
	Filename string
	Content  []byte
}
