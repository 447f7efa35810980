package mailto

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SupportEmailData holds the fields rendered into a support email
type SupportEmailData struct {
	SenderName   string
	SenderEmail  string
	SubjectLabel string
	Message      string
}

// SubjectLine is the email subject for a support request
func SubjectLine(subjectLabel string) string {
	return "Aiki支持请求: " + subjectLabel
}

// Body renders the plain text support email body
func Body(data SupportEmailData) string {
	var b strings.Builder
	b.WriteString("姓名: " + data.SenderName + "\n")
	b.WriteString("邮箱: " + data.SenderEmail + "\n")
	b.WriteString("问题类型: " + data.SubjectLabel + "\n\n")
	b.WriteString("详细描述:\n" + data.Message + "\n\n")
	b.WriteString("---\n")
	b.WriteString("来自Aiki官网联系表单")
	return b.String()
}

// Build returns mailto:<recipient>?subject=..&body=.. with both values
// percent-encoded the way browsers' encodeURIComponent does.
func Build(recipient, subject, body string) string {
	return "mailto:" + recipient +
		"?subject=" + EncodeComponent(subject) +
		"&body=" + EncodeComponent(body)
}

// BuildSupportLink renders and encodes a support email for recipient
func BuildSupportLink(recipient string, data SupportEmailData) string {
	return Build(recipient, SubjectLine(data.SubjectLabel), Body(data))
}

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes the UTF-8 bytes of s, leaving only
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

var (
	ErrNotMailto   = errors.New("link is not a mailto URI")
	ErrLinkTooLong = errors.New("mailto link exceeds maximum length")
)

// Navigator accepts mailto links for dispatch to the user agent. It cannot
// observe whether a mail client opened; it only rejects links a client
// would refuse.
type Navigator struct {
	// MaxLength bounds the link length, 0 means unbounded
	MaxLength int
}

func NewNavigator(maxLength int) *Navigator {
	return &Navigator{MaxLength: maxLength}
}

func (n *Navigator) Navigate(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid mailto link: %w", err)
	}
	if u.Scheme != "mailto" || u.Opaque == "" {
		return ErrNotMailto
	}
	if n.MaxLength > 0 && len(link) > n.MaxLength {
		return fmt.Errorf("%w: %d > %d", ErrLinkTooLong, len(link), n.MaxLength)
	}
	return nil
}
