package email

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"

	"mojotix/internal/domain"
)

// buildRawMessage assembles an RFC 2045 MIME message:
//
//	multipart/mixed
//	├── multipart/related
//	│   ├── multipart/alternative (text, html)
//	│   └── one image part per inline QR (Content-ID referenced from the html)
//	└── one part per attachment
//
// Each inline image is an independent part, so one unreadable QR never breaks
// the rest of the message.
func buildRawMessage(source string, msg *domain.EmailMessage) ([]byte, error) {
	var buf bytes.Buffer

	mixed := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "From: %s\r\n", source)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// multipart/related: body plus inline images.
	relBoundary := randomBoundary("rel")
	relPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/related; boundary=%q", relBoundary)},
	})
	if err != nil {
		return nil, err
	}
	related := multipart.NewWriter(relPart)
	if err := related.SetBoundary(relBoundary); err != nil {
		return nil, err
	}

	if err := writeBodyAlternative(related, msg); err != nil {
		return nil, err
	}
	for _, img := range msg.Inline {
		hdr := textproto.MIMEHeader{
			"Content-Type":              {img.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Id":                {"<" + img.CID + ">"},
			"Content-Disposition":       {"inline"},
		}
		if err := writeBase64Part(related, hdr, img.Data); err != nil {
			return nil, err
		}
	}
	if err := related.Close(); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		hdr := textproto.MIMEHeader{
			"Content-Type":              {att.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		}
		if err := writeBase64Part(mixed, hdr, att.Data); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBodyAlternative(related *multipart.Writer, msg *domain.EmailMessage) error {
	altBoundary := randomBoundary("alt")
	altPart, err := related.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altBoundary)},
	})
	if err != nil {
		return err
	}
	alt := multipart.NewWriter(altPart)
	if err := alt.SetBoundary(altBoundary); err != nil {
		return err
	}

	if msg.TextBody != "" {
		p, err := alt.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=utf-8"},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return err
		}
		if _, err := p.Write([]byte(msg.TextBody)); err != nil {
			return err
		}
	}
	if msg.HTMLBody != "" {
		p, err := alt.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=utf-8"},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return err
		}
		if _, err := p.Write([]byte(msg.HTMLBody)); err != nil {
			return err
		}
	}
	return alt.Close()
}

func writeBase64Part(w *multipart.Writer, hdr textproto.MIMEHeader, data []byte) error {
	part, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	// 76-character lines per RFC 2045.
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func randomBoundary(prefix string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
