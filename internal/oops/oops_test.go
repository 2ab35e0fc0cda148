package oops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWrapsAndCapturesStack(t *testing.T) {
	base := errors.New("connection refused")
	err := New(base, "failed to load account %s", "abc")

	assert.Equal(t, "failed to load account abc: connection refused", err.Error())
	assert.ErrorIs(t, err, base)

	var oopsErr *Error
	assert.ErrorAs(t, err, &oopsErr)
	assert.NotEmpty(t, oopsErr.Stack)
	assert.NotNil(t, ZerologStackMarshaler(err))
}

func TestNewWithoutWrapped(t *testing.T) {
	err := New(nil, "nothing underneath")
	assert.Equal(t, "nothing underneath", err.Error())
	assert.Nil(t, ZerologStackMarshaler(errors.New("plain")))
}
