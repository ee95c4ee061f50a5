package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestEnums_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range domain.OverlapActions() {
		got, err := domain.ParseOverlapAction(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range domain.SchedulerErrorActions() {
		got, err := domain.ParseSchedulerErrorAction(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range domain.PipelineSelections() {
		got, err := domain.ParsePipelineSelection(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []domain.CacheBuildTrees{domain.BuildTreesAlways, domain.BuildTreesAuto, domain.BuildTreesNever} {
		got, err := domain.ParseCacheBuildTrees(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []domain.ElementStatus{domain.StatusPending, domain.StatusCached, domain.StatusSkipped} {
		got, err := domain.ParseElementStatus(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestEnums_Unknown(t *testing.T) {
	t.Parallel()

	parsers := map[string]func(string) error{
		"overlap":   func(s string) error { _, err := domain.ParseOverlapAction(s); return err },
		"on-error":  func(s string) error { _, err := domain.ParseSchedulerErrorAction(s); return err },
		"trees":     func(s string) error { _, err := domain.ParseCacheBuildTrees(s); return err },
		"selection": func(s string) error { _, err := domain.ParsePipelineSelection(s); return err },
		"scope":     func(s string) error { _, err := domain.ParseScope(s); return err },
		"strength":  func(s string) error { _, err := domain.ParseKeyStrength(s); return err },
		"dep":       func(s string) error { _, err := domain.ParseDependencyType(s); return err },
		"warning":   func(s string) error { _, err := domain.ParseCoreWarning(s); return err },
	}
	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := parse("bogus")
			require.ErrorIs(t, err, domain.ErrInvalidEnumValue)
			assert.Equal(t, domain.ClassConfig, domain.Classify(err))

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Equal(t, "bogus", zErr.Metadata()["value"])
		})
	}

	// Values are case sensitive.
	_, err := domain.ParseOverlapAction("ERROR")
	require.ErrorIs(t, err, domain.ErrInvalidEnumValue)
}

// Comparing variants of different enumerations, e.g.
// domain.OverlapError == domain.OnErrorQuit, does not compile. SameEnum
// provides the same guarantee for values held behind interfaces.
func TestSameEnum(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.SameEnum(domain.OverlapError, domain.OverlapError))
	assert.False(t, domain.SameEnum(domain.OverlapError, domain.OverlapIgnore))
	assert.Panics(t, func() {
		domain.SameEnum(domain.OverlapWarning, domain.OnErrorQuit)
	})
	assert.Panics(t, func() {
		domain.SameEnum(domain.ScopeAll, "all")
	})
}

func TestCacheBuildTrees_Keep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		policy    domain.CacheBuildTrees
		success   bool
		requested bool
		want      bool
	}{
		{domain.BuildTreesAlways, true, false, true},
		{domain.BuildTreesNever, false, true, false},
		{domain.BuildTreesAuto, true, false, false},
		{domain.BuildTreesAuto, false, false, true},
		{domain.BuildTreesAuto, true, true, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.Keep(tt.success, tt.requested),
			"%s success=%v requested=%v", tt.policy, tt.success, tt.requested)
	}
}

func TestElementStatus(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.StatusWaiting.Terminal())
	assert.False(t, domain.StatusBuilding.Terminal())
	assert.True(t, domain.StatusSkipped.Terminal())
	assert.True(t, domain.StatusCached.Succeeded())
	assert.True(t, domain.StatusSucceeded.Succeeded())
	assert.False(t, domain.StatusFailed.Succeeded())
}
