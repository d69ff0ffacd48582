package tracing

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

// StartTracing installs the global tracer, configured from the standard
// JAEGER_* environment variables. The returned closer flushes pending spans
// and may be nil when tracing failed to start.
func StartTracing(serviceName string) io.Closer {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		logrus.Warnf("failed to parse tracing config from env: %v\n", err)
		return nil
	}
	cfg.ServiceName = serviceName
	if cfg.Sampler.Type == "" {
		cfg.Sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}
	}

	closer, err := cfg.InitGlobalTracer(serviceName,
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory))
	if err != nil {
		logrus.Warnf("failed to init global tracer: %v\n", err)
		return nil
	}
	return closer
}
