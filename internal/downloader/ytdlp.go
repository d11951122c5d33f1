package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

// TempPrefix marks files the janitor may sweep.
const TempPrefix = "aether-ytdlp-"

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the binary and captures stderr for error reports.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), name)
		}
		return nil, errors.Wrapf(err, "%s failed (stderr: %s)", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

type YtDlp struct {
	bin     string
	cookies string
	tempDir string
	run     Runner
}

type Option func(*YtDlp)

func WithRunner(r Runner) Option {
	return func(y *YtDlp) { y.run = r }
}

func WithCookies(path string) Option {
	return func(y *YtDlp) { y.cookies = path }
}

func NewYtDlp(bin, tempDir string, opts ...Option) *YtDlp {
	if bin == "" {
		bin = "yt-dlp"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	y := &YtDlp{bin: bin, tempDir: tempDir, run: ExecRunner}
	for _, o := range opts {
		o(y)
	}
	return y
}

type ytdlpMeta struct {
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	ViewCount int64         `json:"view_count"`
	LikeCount int64         `json:"like_count"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	ID         string `json:"format_id"`
	Ext        string `json:"ext"`
	Resolution string `json:"resolution"`
	ACodec     string `json:"acodec"`
	VCodec     string `json:"vcodec"`
}

func (y *YtDlp) baseArgs() []string {
	args := []string{"--no-playlist", "--no-warnings"}
	if y.cookies != "" {
		if _, err := os.Stat(y.cookies); err == nil {
			args = append(args, "--cookies", y.cookies)
		} else {
			logger.Warn("Cookies file not found", "path", y.cookies)
		}
	}
	return args
}

func (y *YtDlp) dump(ctx context.Context, url string) (*ytdlpMeta, error) {
	args := append(y.baseArgs(), "-J", "--", url)
	out, err := y.run(ctx, y.bin, args...)
	if err != nil {
		return nil, err
	}

	var meta ytdlpMeta
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	return &meta, nil
}

// ListFormats returns the muxed renditions: formats carrying both audio and
// video, in the order yt-dlp reports them.
func (y *YtDlp) ListFormats(ctx context.Context, url string) ([]Format, error) {
	meta, err := y.dump(ctx, url)
	if err != nil {
		return nil, extractionErr("list formats", url, err)
	}

	var formats []Format
	for _, f := range meta.Formats {
		if f.ACodec == "none" || f.VCodec == "none" {
			continue
		}
		res := f.Resolution
		if res == "" {
			res = "audio"
		}
		formats = append(formats, Format{ID: f.ID, Resolution: res, Ext: f.Ext})
	}
	return formats, nil
}

func (y *YtDlp) Metadata(ctx context.Context, url string) (Metadata, error) {
	meta, err := y.dump(ctx, url)
	if err != nil {
		return Metadata{}, extractionErr("metadata", url, err)
	}
	return Metadata{
		Title:    meta.Title,
		Uploader: meta.Uploader,
		Views:    meta.ViewCount,
		Likes:    meta.LikeCount,
	}, nil
}

func (y *YtDlp) Download(ctx context.Context, req Request) (*Result, error) {
	dest := req.Dest
	if dest == "" {
		dest = filepath.Join(y.tempDir, TempPrefix+uuid.NewString())
	}
	selector := req.Selector
	if selector == "" {
		selector = "best"
	}

	args := append(y.baseArgs(),
		"-f", selector,
		"-o", dest+".%(ext)s",
		"--no-simulate",
		"--print", "before_dl:%(title)s",
		"--print", "after_move:filepath",
	)
	if req.ExtractAudio {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "192K")
	}
	for k, v := range req.Headers {
		args = append(args, "--add-header", k+":"+v)
	}
	args = append(args, "--", req.URL)

	out, err := y.run(ctx, y.bin, args...)
	if err != nil {
		Remove(dest + ".*")
		return nil, extractionErr("download", req.URL, err)
	}

	title, path := parsePrinted(out)
	if path == "" {
		Remove(dest + ".*")
		return nil, extractionErr("download", req.URL, errors.New("yt-dlp reported no output file"))
	}

	st, err := os.Stat(path)
	if err != nil {
		Remove(dest + ".*")
		return nil, errors.Wrap(err, "stat download")
	}
	logger.Debug("yt-dlp download finished", "url", req.URL, "path", path, "size", st.Size())
	return &Result{Path: path, Title: title, Size: st.Size()}, nil
}

// parsePrinted reads the title line printed before the download and the
// final path printed after post-processing.
func parsePrinted(out []byte) (title, path string) {
	var lines []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return "", lines[0]
	}
	return lines[0], lines[len(lines)-1]
}
