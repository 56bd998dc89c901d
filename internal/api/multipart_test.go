package api

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
)

type multipartBody struct {
	w *multipart.Writer
}

func newMultipart(buf *bytes.Buffer) *multipartBody {
	return &multipartBody{w: multipart.NewWriter(buf)}
}

// file пишет единственную часть с типом image/png и закрывает форму
func (m *multipartBody) file(field, name string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	h.Set("Content-Type", "image/png")
	part, err := m.w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	return m.w.Close()
}

func (m *multipartBody) contentType() string {
	return m.w.FormDataContentType()
}
