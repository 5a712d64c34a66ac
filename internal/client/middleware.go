package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
)

// The request and response transforms applied around every dispatch, in a
// fixed order: file-part normalization, then multipart/form encoding on
// the way out; the 503 body guard, conditional JSON decoding, and the
// streaming-text short-circuit on the way back.

// formFile is one normalized multipart file part. The part borrows the
// source stream for the duration of the request and never closes it.
type formFile struct {
	field    string
	filename string
	mimeType string
	src      UploadSource
}

const placeholderFilename = "uploaded"

// normalizeParams splits a parameter map into plain form fields and file
// parts. Any value satisfying UploadSource becomes a file part with a
// best-effort MIME type; everything else is stringified into form fields.
func normalizeParams(params map[string]interface{}) (url.Values, []formFile) {
	fields := url.Values{}
	var files []formFile

	for key, value := range params {
		switch v := value.(type) {
		case UploadSource:
			filename := placeholderFilename
			if named, ok := v.(namedSource); ok && named.Name() != "" {
				filename = filepath.Base(named.Name())
			}
			files = append(files, formFile{
				field:    key,
				filename: filename,
				mimeType: mimeTypeForFile(filename),
				src:      v,
			})
		case string:
			fields.Set(key, v)
		default:
			fields.Set(key, fmt.Sprintf("%v", v))
		}
	}

	return fields, files
}

// mimeTypeForFile infers a content type from the file extension.
func mimeTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// encodeBody serializes the parameter map into a request body:
// multipart/form-data when any file parts are present, urlencoded form
// data otherwise. An empty map yields no body.
func encodeBody(params map[string]interface{}) (io.Reader, string, error) {
	fields, files := normalizeParams(params)

	if len(files) == 0 {
		if len(fields) == 0 {
			return nil, "", nil
		}
		return strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("failed to encode field %s: %w", key, err)
			}
		}
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.mimeType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.src); err != nil {
			return nil, "", fmt.Errorf("failed to encode file part %s: %w", file.field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// Response is one completed API exchange. Body is nil for successful
// streamed-text responses, whose bytes went straight to the stream sink.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Success reports whether the response status is 2xx.
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

type flusher interface {
	Flush() error
}

// decodeResponse consumes an HTTP response per the content negotiation of
// its request. Successful text responses stream chunk-by-chunk to sink
// and leave Body nil; everything else is buffered. A 503 body is blanked
// so a non-JSON upstream error page cannot mask the real condition.
func decodeResponse(httpResp *http.Response, accept string, sink io.Writer) (*Response, error) {
	defer httpResp.Body.Close()

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
	}

	if strings.HasSuffix(accept, "text") && resp.Success() && sink != nil {
		if err := streamBody(httpResp.Body, sink); err != nil {
			return nil, fmt.Errorf("failed to stream response: %w", err)
		}
		return resp, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.Status == http.StatusServiceUnavailable {
		body = nil
	}
	resp.Body = body

	return resp, nil
}

// streamBody forwards bytes to sink as they arrive, flushing after every
// chunk so build output shows up live.
func streamBody(r io.Reader, sink io.Writer) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
			if f, ok := sink.(flusher); ok {
				_ = f.Flush()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
