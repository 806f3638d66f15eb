package httperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBusinessUnwraps(t *testing.T) {
	err := fmt.Errorf("manage: %w", ErrBusiness("not_found"))

	assert.True(t, IsBusiness(err, "not_found"))
	assert.False(t, IsBusiness(err, "conflict"))
	assert.Equal(t, "not_found", Code(err))
	assert.Equal(t, "", Code(fmt.Errorf("plain")))
}
