package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ForwardsSpans(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tp := telemetry.NewProvider(renderer)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var rootID string
	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "build", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { rootID = id }),
		renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "app.mason", gomock.Any()).
			Do(func(_, parent, _ string, _ time.Time) { assert.Equal(t, rootID, parent) }),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Nil()),
	)

	tracer := tp.Tracer("test")
	ctx, root := tracer.Start(context.Background(), "build")
	_, child := tracer.Start(ctx, "app.mason")
	child.SetStatus(codes.Error, "command failed")
	child.End()
	root.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	_, span := tp.Tracer("test").Start(context.Background(), "x")
	span.End()

	bridge := telemetry.NewBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestOTelTracer_WithRenderer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	deps := map[string][]string{"app.mason": {"base.mason"}}
	renderer.EXPECT().OnPlanEmit([]string{"base.mason", "app.mason"}, deps, []string{"app.mason"})
	renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("compiling\n"))

	tracer := telemetry.NewOTelTracer(sdktrace.NewTracerProvider(), "test").WithRenderer(renderer)
	ctx := context.Background()
	tracer.EmitPlan(ctx, []string{"base.mason", "app.mason"}, deps, []string{"app.mason"})

	_, span := tracer.Start(ctx, "app.mason")
	n, err := span.Write([]byte("compiling\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// End flushes pending output before the span completes.
	span.End()
}

func TestOTelTracer_OutputBytes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnTaskLog(gomock.Any(), gomock.Any()).AnyTimes()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := telemetry.NewOTelTracer(tp, "test").WithRenderer(renderer)

	_, span := tracer.Start(context.Background(), "app.mason")
	_, err := span.Write([]byte("compiling\n"))
	require.NoError(t, err)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("mason.output_bytes", 10))
}

func TestOTelTracer_Recording(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := telemetry.NewOTelTracer(tp, "test")

	ctx, root := tp.Tracer("test").Start(context.Background(), "build")
	tracer.EmitPlan(ctx, []string{"a.mason"}, nil, []string{"a.mason"})
	root.End()

	_, span := tracer.Start(ctx, "a.mason",
		ports.WithAttribute("element", "a.mason"),
		ports.WithAttribute("builders", 2),
	)
	span.SetAttribute("cached", true)
	span.SetAttribute("files", []string{"x"})
	_, err := span.Write([]byte("log line"))
	require.NoError(t, err)
	span.RecordError(errors.New("exit 2"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 2)

	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "plan_emitted", ended[0].Events()[0].Name)

	s := ended[1]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "exit 2", s.Status().Description)
	assert.Contains(t, s.Attributes(), attribute.String("element", "a.mason"))
	assert.Contains(t, s.Attributes(), attribute.Int("builders", 2))
	assert.Contains(t, s.Attributes(), attribute.Bool("cached", true))

	var names []string
	for _, ev := range s.Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"log", "exception"}, names)
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()
	tracer.EmitPlan(ctx, []string{"a"}, nil, nil)

	got, span := tracer.Start(ctx, "a")
	assert.Equal(t, ctx, got)
	n, err := span.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("x"))
	span.End()
}
