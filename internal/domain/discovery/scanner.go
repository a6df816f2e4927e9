package discovery

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

// fingerprintBytes is how much of a file's head goes into its fingerprint.
const fingerprintBytes = 1 << 20

// Model is a model file found on disk.
type Model struct {
	Path         string             `json:"path"`
	Name         string             `json:"name"`
	Framework    types.Framework    `json:"framework"`
	Capabilities []types.Capability `json:"capabilities,omitempty"`
	SizeBytes    int64              `json:"size_bytes"`
	Fingerprint  string             `json:"fingerprint"`
	// Archive is set for downloaded bundles that must be extracted before
	// any backend can load them.
	Archive bool   `json:"archive,omitempty"`
	MIME    string `json:"mime,omitempty"`
	// Providers maps a capability name to the provider that would serve
	// this file right now.
	Providers map[string]string `json:"providers,omitempty"`
}

// Scanner finds model files below a directory and asks the service registry
// which provider would serve each.
type Scanner struct {
	root     string
	services *service.Registry
	logger   *logging.Logger
}

// NewScanner creates a scanner for root. services may be nil, in which case
// no providers are resolved.
func NewScanner(root string, services *service.Registry, logger *logging.Logger) *Scanner {
	return &Scanner{root: root, services: services, logger: logging.OrNop(logger)}
}

// Scan walks the directory tree. Hidden directories are skipped. Files that
// are neither model weights nor archives are ignored. Results are sorted by
// path.
func (s *Scanner) Scan(ctx context.Context) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, errcode.Wrap(errcode.Cancelled, err, "model scan")
	}
	if fi, err := os.Stat(s.root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errcode.Wrap(errcode.FileNotFound, err, "models directory")
		}
		return nil, errcode.Wrap(errcode.FileReadFailed, err, "models directory")
	} else if !fi.IsDir() {
		return nil, errcode.New(errcode.InvalidArgument, "%s is not a directory", s.root)
	}

	var (
		mu     sync.Mutex
		models []Model
	)
	conf := fastwalk.Config{Follow: false}

	// fastwalk invokes the callback from several goroutines.
	err := fastwalk.Walk(&conf, s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Debug("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		m, ok := s.inspect(path, d)
		if !ok {
			return nil
		}
		mu.Lock()
		models = append(models, m)
		mu.Unlock()
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errcode.Wrap(errcode.Cancelled, err, "model scan")
		}
		return nil, errcode.Wrap(errcode.FileReadFailed, err, "model scan")
	}

	slices.SortFunc(models, func(a, b Model) int { return strings.Compare(a.Path, b.Path) })
	s.logger.Info("Model scan complete", zap.String("root", s.root), zap.Int("models", len(models)))
	return models, nil
}

func (s *Scanner) inspect(path string, d fs.DirEntry) (Model, bool) {
	fw, caps := Classify(path)
	m := Model{
		Path:         path,
		Name:         strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
		Framework:    fw,
		Capabilities: caps,
	}

	if fw == types.FrameworkUnknown {
		mt, err := mimetype.DetectFile(path)
		if err != nil || !isArchive(mt) {
			return Model{}, false
		}
		m.Archive = true
		m.MIME = mt.String()
	}

	info, err := d.Info()
	if err != nil {
		return Model{}, false
	}
	m.SizeBytes = info.Size()

	fp, err := Fingerprint(path)
	if err != nil {
		s.logger.Debug("Fingerprint failed", zap.String("path", path), zap.Error(err))
	}
	m.Fingerprint = fp

	if !m.Archive {
		m.Providers = s.resolve(path, fw, caps)
	}
	return m, true
}

func (s *Scanner) resolve(path string, fw types.Framework, caps []types.Capability) map[string]string {
	if s.services == nil {
		return nil
	}
	out := make(map[string]string, len(caps))
	for _, c := range caps {
		req := types.ServiceRequest{Identifier: path, ModelPath: path, Capability: c, Framework: fw}
		if p, err := s.services.FindProvider(c, req); err == nil {
			out[c.String()] = p.Name
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Classify infers the framework and candidate capabilities of a model file
// from its name.
func Classify(path string) (types.Framework, []types.Capability) {
	lower := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(lower) {
	case ".gguf":
		return types.FrameworkLlamaCPP, []types.Capability{types.CapabilityLLM, types.CapabilityVLM}
	case ".onnx":
		return types.FrameworkONNX, []types.Capability{
			types.CapabilitySTT, types.CapabilityTTS, types.CapabilityVAD, types.CapabilityEmbeddings,
		}
	case ".bin":
		if strings.Contains(lower, "whisper") || strings.Contains(lower, "ggml") {
			return types.FrameworkWhisperCPP, []types.Capability{types.CapabilitySTT}
		}
	case ".safetensors", ".ckpt":
		return types.FrameworkSDCPP, []types.Capability{types.CapabilityDiffusion}
	}
	return types.FrameworkUnknown, nil
}

var archiveTypes = []string{
	"application/zip",
	"application/gzip",
	"application/x-tar",
	"application/zstd",
	"application/x-bzip2",
	"application/x-xz",
}

func isArchive(mt *mimetype.MIME) bool {
	for _, t := range archiveTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// Fingerprint hashes the size and the first MiB of a file with BLAKE2b-256.
// It identifies a download without reading multi-gigabyte weights in full.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.CopyN(h, f, fingerprintBytes); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(info.Size()))
	h.Write(size[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}
