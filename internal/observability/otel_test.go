package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/applicationtrack/applicationtrack-backend/internal/config"
)

func preserveGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledCfg(name string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a shutdown func even when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
}

func TestSetupOTel_InstallsTracerProvider(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), enabledCfg("svc-insecure"), "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected *sdktrace.TracerProvider installed globally")
	}
	_, span := otel.Tracer("smoke").Start(context.Background(), "root")
	span.End()
}

func TestSetupOTel_TLSBranch(t *testing.T) {
	preserveGlobals(t)

	cfg := enabledCfg("svc-tls")
	cfg.Insecure = false
	shutdown, err := SetupOTel(context.Background(), cfg, "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_ = shutdown(context.Background())
}

func TestSetupOTel_ExporterErrorLeavesGlobalsIntact(t *testing.T) {
	preserveGlobals(t)

	orig := newOTLPExporterFn
	t.Cleanup(func() { newOTLPExporterFn = orig })
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("exporter down")
	}

	prevTP := otel.GetTracerProvider()
	if _, err := SetupOTel(context.Background(), enabledCfg("svc"), "v0"); err == nil {
		t.Fatalf("expected exporter error to propagate")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("tracer provider must not change on failure")
	}
}

func TestSetupOTel_ResourceErrorLeavesGlobalsIntact(t *testing.T) {
	preserveGlobals(t)

	orig := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = orig })
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("resource failure")
	}

	prevTP := otel.GetTracerProvider()
	if _, err := SetupOTel(context.Background(), enabledCfg("svc"), "v0"); err == nil {
		t.Fatalf("expected resource error to propagate")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("tracer provider must not change on failure")
	}
}

func TestSetupOTel_ShutdownIsCallable(t *testing.T) {
	preserveGlobals(t)

	shutdown, err := SetupOTel(context.Background(), enabledCfg("svc-shutdown"), "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ct, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ct); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}
