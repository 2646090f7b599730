// Package archive bundles stored case documents into a ZIP stream.
package archive

import (
	"archive/zip"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"
)

var (
	// ErrNothingToArchive is returned by Prepare when no entry resolves to a stored file.
	ErrNothingToArchive = errors.New("nothing to archive")
	// ErrStreamAborted wraps any failure after output has started; the
	// written bytes are not a valid archive.
	ErrStreamAborted = errors.New("archive stream aborted")
)

// FileStore is the read side of document storage.
type FileStore interface {
	Exists(ctx context.Context, key string) bool
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Entry is one document to bundle. Ref is the stored path as recorded in
// the database; Group, when set, becomes a folder inside the archive.
type Entry struct {
	Ref      string
	Name     string
	Group    string
	Modified time.Time
}

// Skipped is an entry whose file could not be found under any candidate path.
type Skipped struct {
	Entry Entry
	Tried []string
}

type resolvedEntry struct {
	key      string
	name     string
	modified time.Time
}

// Builder resolves entries against a store.
type Builder struct {
	Store FileStore
}

// NewBuilder returns a Builder reading from store.
func NewBuilder(store FileStore) *Builder {
	return &Builder{Store: store}
}

// Archive is a resolved, ready-to-stream set of entries.
type Archive struct {
	store   FileStore
	entries []resolvedEntry
	skipped []Skipped
}

// Prepare resolves every entry. Entries that cannot be found are skipped;
// if none remain ErrNothingToArchive is returned and nothing is streamed.
func (b *Builder) Prepare(ctx context.Context, entries []Entry) (*Archive, error) {
	a := &Archive{store: b.Store}
	names := nameSet{}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := Resolve(e.Ref, func(key string) bool { return b.Store.Exists(ctx, key) })
		if !res.Found {
			a.skipped = append(a.skipped, Skipped{Entry: e, Tried: res.Tried})
			continue
		}

		name := e.Name
		if name == "" {
			name = path.Base(res.Path)
		}
		folder := ""
		if e.Group != "" {
			folder = SanitizeName(e.Group)
		}

		modified := e.Modified
		if modified.IsZero() {
			modified = time.Now()
		}

		a.entries = append(a.entries, resolvedEntry{
			key:      res.Path,
			name:     names.claim(folder, SanitizeName(name)),
			modified: modified,
		})
	}

	if len(a.entries) == 0 {
		return nil, ErrNothingToArchive
	}
	return a, nil
}

// Len is the number of entries that will be written.
func (a *Archive) Len() int { return len(a.entries) }

// Names returns entry names in write order.
func (a *Archive) Names() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.name
	}
	return out
}

// Skipped returns entries dropped during Prepare.
func (a *Archive) Skipped() []Skipped { return a.skipped }

// WriteTo streams the archive into w, one source file open at a time.
// Writes block on w, so a slow consumer throttles reading. Cancelling ctx
// stops the stream before the next read.
func (a *Archive) WriteTo(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, e := range a.entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrStreamAborted, err)
		}
		if err := a.writeEntry(ctx, zw, e); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrStreamAborted, e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamAborted, err)
	}
	return nil
}

func (a *Archive) writeEntry(ctx context.Context, zw *zip.Writer, e resolvedEntry) error {
	src, err := a.store.Open(ctx, e.key)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.CreateHeader(&zip.FileHeader{
		Name:     e.name,
		Method:   zip.Deflate,
		Modified: e.modified,
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, &contextReader{ctx: ctx, r: src})
	return err
}

// Pipe runs WriteTo in a goroutine and returns the read end. Closing the
// reader early makes the writer fail and release its open file.
func (a *Archive) Pipe(ctx context.Context) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(a.WriteTo(ctx, pw))
	}()
	return pr
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
