package errorx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCoder struct {
	code, status int
}

func (c testCoder) Code() int         { return c.code }
func (c testCoder) HTTPStatus() int   { return c.status }
func (c testCoder) String() string    { return "test coder" }
func (c testCoder) Reference() string { return "" }

func TestWrapCAndParse(t *testing.T) {
	MustRegister(testCoder{code: 990001, status: http.StatusConflict})

	base := errors.New("thread busy")
	err := WrapC(base, 990001, "turn on %q", "t1")

	assert.EqualError(t, err, `turn on "t1": thread busy`)
	assert.True(t, errors.Is(err, base))
	assert.True(t, IsCode(err, 990001))
	assert.Equal(t, http.StatusConflict, ParseCoder(err).HTTPStatus())
}

func TestParseUnknown(t *testing.T) {
	c := ParseCoder(errors.New("plain"))
	assert.Equal(t, ErrUnknown, c.Code())
	assert.Equal(t, http.StatusInternalServerError, c.HTTPStatus())
	assert.Nil(t, ParseCoder(nil))
	assert.Nil(t, WrapC(nil, 990001, "ignored"))
}

func TestMustRegisterDuplicatePanics(t *testing.T) {
	MustRegister(testCoder{code: 990002, status: http.StatusBadRequest})
	assert.Panics(t, func() { MustRegister(testCoder{code: 990002}) })
	assert.Panics(t, func() { Register(testCoder{code: ErrUnknown}) })
}
