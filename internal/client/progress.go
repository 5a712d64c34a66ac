package client

import "io"

// ProgressThreshold is the minimum upload size, in bytes, for which the
// CLI shows a progress bar. Smaller files upload silently.
const ProgressThreshold = 50_000

// UploadSource is the surface an upload body must expose. *os.File
// satisfies it by construction; any seekable stream works. The pipeline
// reads from the source but never closes it; the caller owns its
// lifecycle.
type UploadSource interface {
	io.Reader
	io.Seeker
	io.Closer
}

// namedSource is optionally implemented by sources that know their file
// path (as *os.File does). The name drives filename and MIME inference
// during multipart encoding; unnamed sources get a placeholder.
type namedSource interface {
	Name() string
}

// progressSource wraps an UploadSource so that every chunk read during
// multipart encoding is also reported to a sink (typically a progress
// bar, which implements io.Writer). Sink failures are ignored: progress
// is instrumentation and must never fail an upload.
type progressSource struct {
	src  UploadSource
	sink io.Writer
}

// NewProgressSource returns src wrapped with progress reporting to sink.
func NewProgressSource(src UploadSource, sink io.Writer) UploadSource {
	return &progressSource{src: src, sink: sink}
}

func (p *progressSource) Read(b []byte) (int, error) {
	n, err := p.src.Read(b)
	if n > 0 {
		_, _ = p.sink.Write(b[:n])
	}
	return n, err
}

func (p *progressSource) Seek(offset int64, whence int) (int64, error) {
	return p.src.Seek(offset, whence)
}

func (p *progressSource) Close() error {
	return p.src.Close()
}

// Name delegates to the wrapped source so filename inference still works.
func (p *progressSource) Name() string {
	if named, ok := p.src.(namedSource); ok {
		return named.Name()
	}
	return ""
}
