package export

import (
	"context"
	"fmt"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"go.uber.org/zap"
)

type Opts struct {
	RunID       string
	Description string
	Format      string
}

type Service struct {
	sink Sink
}

func NewExportService(sink Sink) *Service {
	return &Service{sink: sink}
}

// Export encodes the table and hands it to the sink once. Sink failures are returned as is.
func (s *Service) Export(ctx context.Context, table domain.OutputTable, opts Opts) error {
	if opts.Format == "" {
		opts.Format = constants.DefaultFormat
	}
	if opts.Format != constants.DefaultFormat {
		return fmt.Errorf("%s: %w", opts.Format, constants.ErrUnsupportedFormat)
	}
	if opts.Description == "" {
		return fmt.Errorf("empty description: %w", constants.ErrInvalidConfig)
	}

	body, err := EncodeCSV(table)
	if err != nil {
		return fmt.Errorf("EncodeCSV: %w", err)
	}

	artifact := &Artifact{
		Key:         opts.Description + ".csv",
		RunID:       opts.RunID,
		Description: opts.Description,
		ContentType: "text/csv",
		Body:        body,
		Table:       table,
	}

	if err = s.sink.Write(ctx, artifact); err != nil {
		logger.Error(ctx, "export failed", zap.String("key", artifact.Key), zap.Error(err))
		return fmt.Errorf("sink.Write: %w", err)
	}

	return nil
}
