package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultCallTimeout = 30 * time.Second

// Gateway fans a completion over an ordered backend list: primary first,
// then one hop to the secondary. A backend is never retried in place.
type Gateway struct {
	backends []Backend
	timeout  time.Duration
	log      *logrus.Logger
}

func NewGateway(log *logrus.Logger, timeout time.Duration, backends ...Backend) *Gateway {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	if log == nil {
		log = logrus.New()
	}
	return &Gateway{backends: backends, timeout: timeout, log: log}
}

func (g *Gateway) Complete(ctx context.Context, system, prompt string) (string, error) {
	if len(g.backends) == 0 {
		return "", &GatewayError{Err: errors.New("no backends configured")}
	}

	var attempted []string
	var lastErr error

	for _, b := range g.backends {
		attempted = append(attempted, b.Name())

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		out, err := b.Complete(callCtx, system, prompt)
		cancel()

		if err == nil {
			return out, nil
		}
		lastErr = err
		g.log.WithFields(logrus.Fields{
			"backend": b.Name(),
		}).WithError(err).Warn("text generation backend failed")

		if ctx.Err() != nil {
			break
		}
	}

	return "", &GatewayError{Attempted: attempted, Err: lastErr}
}
