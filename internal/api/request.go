package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

const contentTypeJSON = "application/json"

// Request describes one API call. The client never modifies it, so the
// same value can be sent again after a credential refresh.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is appended to the base URL unless it is already absolute.
	Path string
	// Body is marshalled as JSON. Mutually exclusive with Form.
	Body any
	// Form is sent as multipart/form-data.
	Form *Form
	// Token overrides the stored access credential and disables the
	// refresh-and-retry path for this call.
	Token string
	// NoAuth sends the request without any credential.
	NoAuth bool
	// Header is merged over the default headers.
	Header http.Header
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Get builds a GET request.
func Get(path string) *Request {
	return &Request{Method: http.MethodGet, Path: path}
}

// Post builds a POST request with a JSON body.
func Post(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

// Patch builds a PATCH request with a JSON body.
func Patch(path string, body any) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body}
}

// Put builds a PUT request with a JSON body.
func Put(path string, body any) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body}
}

// Delete builds a DELETE request.
func Delete(path string) *Request {
	return &Request{Method: http.MethodDelete, Path: path}
}

// payload is an encoded request body, reusable across attempts.
type payload struct {
	data        []byte
	contentType string
}

func (p payload) reader() io.Reader {
	if p.data == nil {
		return nil
	}
	return bytes.NewReader(p.data)
}

func (r *Request) encode() (payload, error) {
	switch {
	case r.Form != nil && r.Body != nil:
		return payload{}, invalidRequest("request to %s sets both a JSON body and a form", r.Path)
	case r.Form != nil:
		return r.Form.encode()
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			e := invalidRequest("cannot encode request body for %s", r.Path)
			e.Cause = err
			return payload{}, e
		}
		return payload{data: data, contentType: contentTypeJSON}, nil
	default:
		return payload{contentType: contentTypeJSON}, nil
	}
}

type formField struct {
	name  string
	value string
}

// FormFile is a binary part of a multipart form.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart body. Scalar values are coerced to strings.
type Form struct {
	fields []formField
	files  []FormFile
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set appends a field. Nil values and nil pointers are skipped; pointers
// are dereferenced.
func (f *Form) Set(name string, value any) *Form {
	s, ok := formValue(value)
	if ok {
		f.fields = append(f.fields, formField{name: name, value: s})
	}
	return f
}

// AddFile appends a file part.
func (f *Form) AddFile(file FormFile) *Form {
	f.files = append(f.files, file)
	return f
}

// Fields returns the scalar fields by name. Later values win.
func (f *Form) Fields() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.name] = fld.value
	}
	return out
}

func (f *Form) encode() (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return payload{}, formError(err)
		}
	}

	for _, file := range f.files {
		part, err := createFilePart(w, file)
		if err != nil {
			return payload{}, formError(err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return payload{}, formError(err)
		}
	}

	if err := w.Close(); err != nil {
		return payload{}, formError(err)
	}

	return payload{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func createFilePart(w *multipart.Writer, file FormFile) (io.Writer, error) {
	if file.ContentType == "" {
		return w.CreateFormFile(file.Field, file.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	h.Set("Content-Type", file.ContentType)
	return w.CreatePart(h)
}

func formError(err error) *Error {
	e := invalidRequest("cannot encode multipart form")
	e.Cause = err
	return e
}

func formValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case *int:
		if x == nil {
			return "", false
		}
		return fmt.Sprint(*x), true
	case *bool:
		if x == nil {
			return "", false
		}
		return fmt.Sprint(*x), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
