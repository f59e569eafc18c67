package repo

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"goboard/internal/config"
	"goboard/internal/errors"
)

// DefaultProfile is the profile loaded at startup and saved implicitly.
const DefaultProfile = "default"

var profileNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ProfileStore persists configuration profiles as yaml files in a directory,
// with the camera reference image as a PNG next to each profile.
type ProfileStore struct {
	dir string
	log *zap.SugaredLogger
}

func NewProfileStore(dir string, log *zap.SugaredLogger) (*ProfileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	return &ProfileStore{dir: dir, log: log}, nil
}

// List returns the names of all saved profiles.
func (s *ProfileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read profile directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Save writes a profile and its reference image.
func (s *ProfileStore) Save(name string, cfg config.Config) error {
	if !profileNameRe.MatchString(name) {
		return errors.ErrInvalidProfileName
	}

	v := viper.New()
	v.Set("board", cfg.Board)
	v.Set("display", cfg.Display)
	v.Set("camera", cfg.Camera)
	if err := v.WriteConfigAs(s.profilePath(name)); err != nil {
		return fmt.Errorf("write profile %q: %w", name, err)
	}

	refPath := s.referencePath(name)
	if cfg.Camera.Reference == nil {
		// A missing reference must not be resurrected from a stale file.
		if err := os.Remove(refPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale reference image: %w", err)
		}
		return nil
	}

	f, err := os.Create(refPath)
	if err != nil {
		return fmt.Errorf("create reference image: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, cfg.Camera.Reference); err != nil {
		return fmt.Errorf("encode reference image: %w", err)
	}
	return nil
}

// Load reads a profile and its reference image, if present.
func (s *ProfileStore) Load(name string) (config.Config, error) {
	if !profileNameRe.MatchString(name) {
		return config.Config{}, errors.ErrInvalidProfileName
	}

	path := s.profilePath(name)
	if _, err := os.Stat(path); err != nil {
		return config.Config{}, errors.ErrProfileNotFound
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read profile %q: %w", name, err)
	}
	cfg := config.Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse profile %q: %w", name, err)
	}

	cfg.Camera.Reference = s.loadReference(name)
	return cfg, nil
}

// Delete removes a profile and its reference image.
func (s *ProfileStore) Delete(name string) error {
	if !profileNameRe.MatchString(name) {
		return errors.ErrInvalidProfileName
	}
	if err := os.Remove(s.profilePath(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrProfileNotFound
		}
		return fmt.Errorf("delete profile %q: %w", name, err)
	}
	if err := os.Remove(s.referencePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete reference image: %w", err)
	}
	return nil
}

func (s *ProfileStore) loadReference(name string) *image.RGBA {
	f, err := os.Open(s.referencePath(name))
	if err != nil {
		return nil
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		s.log.Warnw("reference image is unreadable, ignoring", "profile", name, "error", err)
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func (s *ProfileStore) profilePath(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

func (s *ProfileStore) referencePath(name string) string {
	return filepath.Join(s.dir, name+".reference.png")
}
