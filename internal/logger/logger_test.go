package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf})

	ctx := l.WithContext(context.Background())
	ctx = SetCaseID(ctx, "case-1")
	ctx = SetSpace(ctx, "primal")
	CtxInfo(ctx, "STEP01 loaded %d rows", 30)

	rec := decodeLast(t, &buf)
	assert.Equal(t, "case-1", rec[FieldCaseID])
	assert.Equal(t, "primal", rec[FieldSpace])
	assert.Equal(t, ServiceName, rec["service"])
	assert.Equal(t, "STEP01 loaded 30 rows", rec["message"])
	assert.Equal(t, "case-1", GetCaseID(ctx))
}

func TestEntryMetricFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Output: &buf})
	ctx := l.WithContext(context.Background())

	With(Fields{FieldStatus: "ok"}).
		WithShape(30, 4).
		WithCount(3).
		Since(time.Now().Add(-time.Second)).
		Info(ctx, "done")

	rec := decodeLast(t, &buf)
	assert.EqualValues(t, 30, rec[FieldRows])
	assert.EqualValues(t, 4, rec[FieldColumns])
	assert.EqualValues(t, 3, rec[FieldCount])
	assert.GreaterOrEqual(t, rec[FieldDurationMs], float64(1000))
	assert.Equal(t, "ok", rec[FieldStatus])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Output: &buf})
	ctx := l.WithContext(context.Background())

	CtxInfo(ctx, "hidden")
	assert.Zero(t, buf.Len())

	CtxWarn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
}
