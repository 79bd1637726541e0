// Package remote stores backup documents on a WebDAV file server.
//
// Every operation takes the connection settings as a Config value; the
// package keeps no state between calls.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/logging"
	"github.com/studio-b12/gowebdav"
)

const DefaultTimeout = 30 * time.Second

const (
	ErrConnection    = errors.ConstError("remote connection failed")
	ErrNotConfigured = errors.ConstError("remote storage is not configured")
	ErrParse         = backup.ErrParse
)

var log = logging.NewLogger("remote")

// Config holds the connection settings for one WebDAV endpoint.
type Config struct {
	URL      string
	Username string
	Password string
	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// BackupEntry describes one backup file on the server.
type BackupEntry struct {
	// Filename is the path from the server root, e.g. "/crochet_backup_....json".
	Filename string
	Basename string
	LastMod  time.Time
	Size     int64
}

// ctxTransport ties every request the WebDAV client makes to the caller's
// context as well as the request's own, which carries the client timeout.
// Whichever ends first aborts the request.
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(t.ctx, cancel)
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		stop()
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, release: func() {
		stop()
		cancel()
	}}
	return resp, nil
}

// cancelBody keeps the joined context alive until the body is closed.
type cancelBody struct {
	io.ReadCloser
	release func()
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

func newClient(ctx context.Context, cfg Config) (*gowebdav.Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrNotConfigured
	}
	c := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	c.SetTimeout(cfg.timeout())
	c.SetTransport(&ctxTransport{ctx: ctx, base: http.DefaultTransport})
	return c, nil
}

func connectionError(op string, err error) error {
	log.WithField("op", op).WithError(err).Warn("remote request failed")
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

// TestConnection lists the root directory to check the URL and credentials.
func TestConnection(ctx context.Context, cfg Config) error {
	c, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	log.WithField("url", cfg.URL).Debug("testing connection")
	if _, err := c.ReadDir("/"); err != nil {
		return connectionError("listing /", err)
	}
	return nil
}

// ListBackups returns the backup files in the root directory, most
// recently modified first.
func ListBackups(ctx context.Context, cfg Config) ([]BackupEntry, error) {
	c, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	infos, err := c.ReadDir("/")
	if err != nil {
		return nil, connectionError("listing /", err)
	}

	var entries []BackupEntry
	for _, fi := range infos {
		if fi.IsDir() || !backup.IsBackupName(fi.Name()) {
			continue
		}
		entries = append(entries, BackupEntry{
			Filename: "/" + fi.Name(),
			Basename: fi.Name(),
			LastMod:  fi.ModTime(),
			Size:     fi.Size(),
		})
	}
	slices.SortFunc(entries, func(a, b BackupEntry) int {
		if c := b.LastMod.Compare(a.LastMod); c != 0 {
			return c
		}
		return strings.Compare(b.Basename, a.Basename)
	})
	log.WithField("count", len(entries)).Debug("listed backups")
	return entries, nil
}

// UploadBackup writes doc under a new timestamped name and returns it.
// An existing file with the same name is overwritten.
func UploadBackup(ctx context.Context, cfg Config, doc *backup.Document) (string, error) {
	c, err := newClient(ctx, cfg)
	if err != nil {
		return "", err
	}
	data, err := backup.Marshal(doc)
	if err != nil {
		return "", err
	}
	filename := "/" + backup.RemoteFileName(time.Now())
	if err := c.Write(filename, data, 0644); err != nil {
		return "", connectionError("uploading "+filename, err)
	}
	log.WithField("file", filename).WithField("bytes", len(data)).Info("uploaded backup")
	return filename, nil
}

// DownloadBackup fetches and parses a backup file. filename may be given
// with or without the leading slash.
func DownloadBackup(ctx context.Context, cfg Config, filename string) (*backup.Document, error) {
	c, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p := path.Clean("/" + strings.TrimPrefix(filename, "/"))
	data, err := c.Read(p)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, errors.NotFoundf("backup %q", p)
		}
		return nil, connectionError("downloading "+p, err)
	}
	doc, err := backup.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	log.WithField("file", p).Debug("downloaded backup")
	return doc, nil
}
