// backend/src/narrative/narrative.go
//
// Optional text-generation layer for reports. The deterministic core never
// depends on its availability: any failure surfaces as ErrUnavailable and the
// caller falls back to RenderFallback. The narrative rewrites presentation
// text only; it receives computed numbers and must never be used to alter
// them.
package narrative

import (
	"context"
	"errors"

	"github.com/username/finsight/backend/src/models"
)

// ErrUnavailable is returned for any narrative failure: missing credentials,
// transport errors, timeouts, or an empty model response.
var ErrUnavailable = errors.New("narrative service unavailable")

// Service generates a prose summary for a computed report.
type Service interface {
	GenerateSummary(ctx context.Context, report *models.Report) (string, error)
}

// Disabled is a Service that always reports unavailability, used when the
// narrative layer is switched off by configuration.
type Disabled struct{}

func (Disabled) GenerateSummary(ctx context.Context, report *models.Report) (string, error) {
	return "", ErrUnavailable
}
