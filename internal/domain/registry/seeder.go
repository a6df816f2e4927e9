package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/types"
)

// ManifestPattern matches module manifest files below the seed directory.
const ManifestPattern = "**/*.module.{yaml,yml,toml}"

// Manifest is the on-disk form of a module descriptor. Hosts use manifests
// to declare platform modules whose providers are registered at runtime.
type Manifest struct {
	Name         string            `yaml:"name" toml:"name"`
	DisplayName  string            `yaml:"display_name" toml:"display_name"`
	Version      string            `yaml:"version" toml:"version"`
	Description  string            `yaml:"description" toml:"description"`
	Capabilities []string          `yaml:"capabilities" toml:"capabilities"`
	Metadata     map[string]string `yaml:"metadata" toml:"metadata"`
}

// DecodeManifest parses a manifest, choosing TOML or YAML by file extension.
func DecodeManifest(name string, data []byte) (Manifest, error) {
	var mf Manifest
	var err error
	if path.Ext(name) == ".toml" {
		err = toml.Unmarshal(data, &mf)
	} else {
		err = yaml.Unmarshal(data, &mf)
	}
	if err != nil {
		return Manifest{}, errcode.Wrap(errcode.InvalidFormat, err, "%s", path.Base(name))
	}
	return mf, nil
}

// Module converts the manifest into a descriptor.
func (mf Manifest) Module() (types.Module, error) {
	var caps types.CapabilitySet
	for _, name := range mf.Capabilities {
		c, err := types.ParseCapability(name)
		if err != nil {
			return types.Module{}, errcode.Wrap(errcode.InvalidFormat, err, "module %q", mf.Name)
		}
		caps = caps.With(c)
	}
	return types.Module{
		Name:         mf.Name,
		DisplayName:  mf.DisplayName,
		Version:      mf.Version,
		Description:  mf.Description,
		Capabilities: caps,
		Metadata:     mf.Metadata,
	}, nil
}

// SeedResult reports what a seeding pass did.
type SeedResult struct {
	Loaded []string
	Failed map[string]error
}

// Seeder registers modules declared by YAML or TOML manifest files
type Seeder struct {
	manager *Manager
	fsys    fs.FS
	dir     string
	logger  *logging.Logger
}

// NewSeeder creates a seeder reading manifests from dir
func NewSeeder(manager *Manager, dir string, logger *logging.Logger) *Seeder {
	return &Seeder{
		manager: manager,
		fsys:    os.DirFS(dir),
		dir:     dir,
		logger:  logging.OrNop(logger),
	}
}

// NewSeederFS creates a seeder reading manifests from fsys
func NewSeederFS(manager *Manager, fsys fs.FS, logger *logging.Logger) *Seeder {
	return &Seeder{
		manager: manager,
		fsys:    fsys,
		dir:     ".",
		logger:  logging.OrNop(logger),
	}
}

// Seed registers every manifest found. A bad manifest is recorded and
// skipped; it never prevents the others from loading. Manifests are
// processed in lexical path order.
func (s *Seeder) Seed() (SeedResult, error) {
	result := SeedResult{Failed: make(map[string]error)}

	if _, err := fs.Stat(s.fsys, "."); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Module manifest directory not found", zap.String("dir", s.dir))
			return result, nil
		}
		return result, fmt.Errorf("stat manifest directory: %w", err)
	}

	matches, err := doublestar.Glob(s.fsys, ManifestPattern)
	if err != nil {
		return result, fmt.Errorf("glob manifests: %w", err)
	}
	sort.Strings(matches)

	for _, p := range matches {
		name, err := s.load(p)
		if err != nil {
			result.Failed[p] = err
			s.logger.Warn("Failed to seed module", zap.String("manifest", p), zap.Error(err))
			continue
		}
		result.Loaded = append(result.Loaded, name)
	}

	s.logger.Info("Module seeding complete",
		zap.Int("loaded", len(result.Loaded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *Seeder) load(p string) (string, error) {
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return "", errcode.Wrap(errcode.FileReadFailed, err, "%s", path.Base(p))
	}

	mf, err := DecodeManifest(p, data)
	if err != nil {
		return "", err
	}

	mod, err := mf.Module()
	if err != nil {
		return "", err
	}
	if mod.Metadata == nil {
		mod.Metadata = make(map[string]string, 1)
	}
	mod.Metadata["manifest"] = p

	if err := s.manager.Register(mod); err != nil {
		return "", err
	}
	return mod.Name, nil
}
