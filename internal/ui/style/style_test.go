package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/ui/style"
)

func TestForStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, style.Mark{Icon: style.Check, Color: style.Green}, style.ForStatus(domain.StatusSucceeded))
	assert.Equal(t, style.Mark{Icon: style.Cross, Color: style.Red}, style.ForStatus(domain.StatusFailed))
	assert.Equal(t, style.Mark{Icon: style.Dot, Color: style.Blue}, style.ForStatus(domain.StatusBuilding))
	assert.Equal(t, style.Mark{Icon: style.Circle, Color: style.Slate}, style.ForStatus("bogus"))
}
