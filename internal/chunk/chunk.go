// Package chunk frames file contents into a stream of bounded buffers for
// upload and download, and reassembles a stream of buffers back into file
// contents. The first chunk of a stream carries metadata; every later chunk
// carries only payload bytes.
package chunk

import (
	"io"
)

// DefaultSize is the chunk payload size used when a caller does not
// configure one explicitly. Kept well under typical gRPC message limits.
const DefaultSize = 4096

// Chunk is one frame of a Store or Fetch stream. Name and ClientID are only
// meaningful on the first chunk of a stream; Mtime is only meaningful on the
// first chunk of a Fetch response. Content may be empty, including on the
// first chunk of an empty file.
type Chunk struct {
	Name     string
	ClientID string
	Mtime    int64
	Content  []byte
}

// Source reads a file sequentially and yields it as a sequence of Chunks.
type Source struct {
	r        io.Reader
	size     int
	name     string
	clientID string
	mtime    int64
	sentMeta bool
	done     bool
}

// NewUploadSource builds a Source for a Store stream: the first chunk
// carries name and clientID.
func NewUploadSource(r io.Reader, size int, name, clientID string) *Source {
	if size <= 0 {
		size = DefaultSize
	}
	return &Source{r: r, size: size, name: name, clientID: clientID}
}

// NewDownloadSource builds a Source for a Fetch stream: the first chunk
// carries name and mtime.
func NewDownloadSource(r io.Reader, size int, name string, mtime int64) *Source {
	if size <= 0 {
		size = DefaultSize
	}
	return &Source{r: r, size: size, name: name, mtime: mtime}
}

// Next returns the next chunk in the stream. It returns io.EOF, with a
// zero-value Chunk, once the stream is exhausted. An empty file yields
// exactly one header-only chunk before io.EOF.
func (s *Source) Next() (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}

	buf := make([]byte, s.size)
	n, err := io.ReadFull(s.r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Chunk{}, err
	}

	first := !s.sentMeta
	s.sentMeta = true

	if n == 0 && !first {
		s.done = true
		return Chunk{}, io.EOF
	}
	if n < s.size {
		s.done = true
	}

	c := Chunk{Content: buf[:n]}
	if first {
		c.Name = s.name
		c.ClientID = s.clientID
		c.Mtime = s.mtime
	}
	return c, nil
}

// Sink reassembles a chunk stream into a file. The first chunk observed
// sets Name/ClientID/Mtime on the Sink; callers that need that metadata up
// front should inspect the first Chunk before constructing the Sink, or
// read Name/ClientID/Mtime after the first Write.
type Sink struct {
	w        io.Writer
	Name     string
	ClientID string
	Mtime    int64
	first    bool
}

// NewSink wraps w, which receives the concatenated payload of every chunk
// written to the Sink in order.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w, first: true}
}

// Write appends c's payload to the underlying writer and, on the first
// call, records c's metadata fields on the Sink.
func (s *Sink) Write(c Chunk) error {
	if s.first {
		s.Name = c.Name
		s.ClientID = c.ClientID
		s.Mtime = c.Mtime
		s.first = false
	}
	if len(c.Content) == 0 {
		return nil
	}
	_, err := s.w.Write(c.Content)
	return err
}
