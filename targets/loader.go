package targets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultHTTPTimeout bounds remote image fetches.
const DefaultHTTPTimeout = 10 * time.Second

// Future is the pending result of an image load.
type Future struct {
	done chan struct{}
	img  image.Image
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a completed future holding img.
func Resolved(img image.Image) *Future {
	f := newFuture()
	f.resolve(img, nil)
	return f
}

// Failed returns a completed future holding err.
func Failed(err error) *Future {
	f := newFuture()
	f.resolve(nil, err)
	return f
}

func (f *Future) resolve(img image.Image, err error) {
	f.img, f.err = img, err
	close(f.done)
}

// Done is closed once the load has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the load finishes or ctx is done. A load failure is
// returned as an *AssetLoadError; a cancelled wait returns ctx.Err() and
// leaves the load running for other waiters.
func (f *Future) Await(ctx context.Context) (image.Image, error) {
	select {
	case <-f.done:
		return f.img, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loader fetches and decodes images from file paths or http(s) URLs.
// Successful loads are cached by reference; failures are retried on the next Load.
type Loader struct {
	client *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Future
}

// NewLoader creates a loader. A nil client gets DefaultHTTPTimeout; a nil
// logger uses slog.Default().
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client: client,
		logger: logger,
		cache:  make(map[string]*Future),
	}
}

// Load starts loading ref, or returns the in-flight or cached future for it.
// The fetch itself is not bound to ctx's cancellation, since other callers
// may be waiting on the same future.
func (l *Loader) Load(ctx context.Context, ref string) *Future {
	l.mu.Lock()
	if f, ok := l.cache[ref]; ok {
		l.mu.Unlock()
		return f
	}
	f := newFuture()
	l.cache[ref] = f
	l.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		start := time.Now()
		img, err := l.fetch(fetchCtx, ref)
		if err != nil {
			l.forget(ref, f)
			f.resolve(nil, &AssetLoadError{Ref: ref, Err: err})
			return
		}
		b := img.Bounds()
		l.logger.Debug("image loaded",
			"ref", ref,
			"width", b.Dx(),
			"height", b.Dy(),
			"elapsed", time.Since(start),
		)
		f.resolve(img, nil)
	}()
	return f
}

// Forget drops a cached image so the next Load fetches it again.
func (l *Loader) Forget(ref string) {
	l.mu.Lock()
	delete(l.cache, ref)
	l.mu.Unlock()
}

func (l *Loader) forget(ref string, f *Future) {
	l.mu.Lock()
	if l.cache[ref] == f {
		delete(l.cache, ref)
	}
	l.mu.Unlock()
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, errors.New("empty reference")
	}
	var r io.ReadCloser
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching: unexpected status %s", resp.Status)
		}
		r = resp.Body
	} else {
		file, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("opening: %w", err)
		}
		r = file
	}
	defer r.Close()

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	l.logger.Debug("image decoded", "ref", ref, "format", format)
	return img, nil
}
