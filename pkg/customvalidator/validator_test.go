package customvalidator

import (
	"bytes"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	ServiceNumber string   `validate:"service_number"`
	OrderNumber   string   `validate:"omitempty,order_number"`
	Permissions   []string `validate:"dive,permission"`
	Pincode       string   `validate:"omitempty,pincode"`
}

func TestCustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{ServiceNumber: "042", OrderNumber: "042-00007", Permissions: []string{"view_orders"}, Pincode: "1234"}))
	assert.Error(t, v.Struct(sample{ServiceNumber: "04a"}))
	assert.Error(t, v.Struct(sample{ServiceNumber: "1", OrderNumber: "042/7"}))
	assert.Error(t, v.Struct(sample{ServiceNumber: "1", Permissions: []string{"fly"}}))
	assert.Error(t, v.Struct(sample{ServiceNumber: "1", Pincode: "12"}))
}

type nullSample struct {
	Name   null.String `validate:"omitempty,max=3"`
	Number null.String `validate:"omitempty,service_number"`
}

func TestNullTypes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(nullSample{}))
	assert.NoError(t, v.Struct(nullSample{Name: null.StringFrom("abc"), Number: null.StringFrom("7")}))
	assert.Error(t, v.Struct(nullSample{Name: null.StringFrom("abcd")}))
	assert.Error(t, v.Struct(nullSample{Number: null.StringFrom("x")}))
}

func TestValidateFile(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	mime, err := ValidateFile(int64(len(png)), bytes.NewReader(png), OrderPhotoRules)
	assert.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateFile(4, bytes.NewReader([]byte("text")), OrderPhotoRules)
	assert.Error(t, err)

	_, err = ValidateFile(11*1024*1024, bytes.NewReader(png), OrderPhotoRules)
	assert.Error(t, err)
}
