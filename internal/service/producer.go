package service

import (
	"context"
	"errors"

	"github.com/nurpe/academy-automation/internal/model"
	"github.com/nurpe/academy-automation/internal/resilience"
)

const renderOperation = "certificate_render"

// GuardedProducer runs a producer through the resilience executor so a
// failing renderer trips the breaker instead of stalling every student.
type GuardedProducer struct {
	next     CertificateProducer
	executor *resilience.Executor
}

func NewGuardedProducer(next CertificateProducer, executor *resilience.Executor) *GuardedProducer {
	return &GuardedProducer{next: next, executor: executor}
}

func (p *GuardedProducer) GenerateCertificate(ctx context.Context, req model.CertificateRequest) ([]byte, error) {
	var content []byte
	err := p.executor.Execute(ctx, renderOperation, func(ctx context.Context) error {
		out, err := p.next.GenerateCertificate(ctx, req)
		if err != nil {
			return err
		}
		content = out
		return nil
	}, classifyRenderError)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// classifyRenderError keeps per-request failures out of the shared breaker so
// one bad student record cannot block the rest of a batch.
func classifyRenderError(err error) resilience.ErrorClassification {
	if errors.Is(err, model.ErrInvalidCertificateRequest) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.DefaultClassifier(err)
}
