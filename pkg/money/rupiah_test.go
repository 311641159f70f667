package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", Rupiah(0))
	assert.Equal(t, "Rp 500", Rupiah(500))
	assert.Equal(t, "Rp 45.000", Rupiah(45000))
	assert.Equal(t, "Rp 1.250.000", Rupiah(1250000))
	assert.Equal(t, "-Rp 7.500", Rupiah(-7500))
}
