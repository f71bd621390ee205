package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ougirez/nightlights/internal/pkg/logger"
	"go.uber.org/zap"
)

type Opts struct {
	ExposurePath string
	LightsPath   string
	OutPath      string
}

type Service struct{}

func NewMergeService() *Service {
	return &Service{}
}

// Merge joins an exposure table onto an extracted lights panel and writes
// province,year,month,exposure,mean_lights. Every lights row is kept.
func (s *Service) Merge(ctx context.Context, opts Opts) (int, error) {
	exposure, err := readFile(opts.ExposurePath, ReadExposure)
	if err != nil {
		return 0, err
	}
	lights, err := readFile(opts.LightsPath, ReadLights)
	if err != nil {
		return 0, err
	}

	merged := Join(CombineMetroManila(exposure), RegroupLights(lights))

	if err = os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return 0, fmt.Errorf("os.MkdirAll: %w", err)
	}
	out, err := os.Create(opts.OutPath)
	if err != nil {
		return 0, fmt.Errorf("os.Create: %w", err)
	}
	defer out.Close()

	if err = WriteMerged(out, merged); err != nil {
		return 0, fmt.Errorf("WriteMerged: %w", err)
	}

	logger.Info(ctx, "merged exposure onto lights panel",
		zap.Int("exposure", len(exposure)), zap.Int("lights", len(lights)), zap.Int("rows", len(merged)))

	return len(merged), out.Close()
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}
