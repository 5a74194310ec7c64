package edgarscan_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/edgarscan"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := edgarscan.Errorf(edgarscan.ESTORAGE, "archive %q not found", "2020-01-15.txt.gz")

	assert.Equal(t, edgarscan.ESTORAGE, edgarscan.ErrorCode(err))
	assert.Equal(t, "archive \"2020-01-15.txt.gz\" not found", edgarscan.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("scan: %w", edgarscan.Errorf(edgarscan.EWORKER, "boom"))

	assert.Equal(t, edgarscan.EWORKER, edgarscan.ErrorCode(err))
	assert.Equal(t, "boom", edgarscan.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, edgarscan.EINTERNAL, edgarscan.ErrorCode(fmt.Errorf("plain")))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, edgarscan.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, edgarscan.ErrorMessage(nil))
}
