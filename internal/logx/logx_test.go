package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDoesNotPanicAtAnyLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		l := New("poudriered", level)
		assert.NotPanics(t, func() {
			l.Debugf("test %s", "debug")
			l.Infof("test %d", 1)
			l.Warnf("test")
			l.Errorf("test %v", assert.AnError)
		})
	}
}

func TestNamedReturnsDistinctLogger(t *testing.T) {
	l := New("poudriered", "info")
	child := l.Named("daemon")
	assert.NotNil(t, child)
	assert.NotSame(t, l, child)
}
