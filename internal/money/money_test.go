package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatChileanPesos(t *testing.T) {
	f := NewFormatter("es-CL", "$")

	assert.Equal(t, "$0", f.Format(0))
	assert.Equal(t, "$500", f.Format(500))
	assert.Equal(t, "$2.500", f.Format(2500))
	assert.Equal(t, "$1.250.000", f.Format(1250000))
}

func TestFormatFallsBackOnBadLocale(t *testing.T) {
	f := NewFormatter("not a locale", "$")

	assert.Equal(t, "$500", f.Format(500))
}
