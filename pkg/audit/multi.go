package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// Multi fans an export out to several exporters.
type Multi struct {
	exporters []ports.AuditExporter
	logger    *slog.Logger
}

var _ ports.AuditExporter = (*Multi)(nil)

// NewMulti calls every exporter in order.
func NewMulti(logger *slog.Logger, exporters ...ports.AuditExporter) *Multi {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Multi{exporters: exporters, logger: logger}
}

// Export returns the artifact of the first exporter that succeeded. It fails
// only when every exporter failed; partial failures are logged.
func (m *Multi) Export(ctx context.Context, s *domain.Session) (string, error) {
	var (
		artifact string
		errs     []error
	)
	for _, e := range m.exporters {
		id, err := e.Export(ctx, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if artifact == "" {
			artifact = id
		}
	}

	if artifact == "" && len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	for _, err := range errs {
		m.logger.Warn("Secondary audit export failed", "user_id", s.UserID, "err", err)
	}
	return artifact, nil
}
