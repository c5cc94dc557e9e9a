package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avtoradar/marketplace-api/internal/models"
)

func TestDecodeImages_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "valid list", raw: `["a.jpg","b.jpg"]`, want: []string{"a.jpg", "b.jpg"}},
		{name: "empty string", raw: "", want: []string{}},
		{name: "corrupt blob", raw: "not-a-json", want: []string{}},
		{name: "json null", raw: "null", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeImages(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeImages_NilBecomesEmptyList(t *testing.T) {
	assert.Equal(t, "[]", encodeImages(nil))
	assert.Equal(t, `["a.jpg"]`, encodeImages([]string{"a.jpg"}))
}

func TestContactRoundTrip(t *testing.T) {
	contact := models.ContactInfo{Phone: "+79990001122", Email: "seller@example.com", Location: "Москва"}
	assert.Equal(t, contact, decodeContact(encodeContact(contact)))

	assert.Equal(t, models.ContactInfo{}, decodeContact(""))
	assert.Equal(t, models.ContactInfo{}, decodeContact("{broken"))
}

func TestDecodeFeatures_Defaults(t *testing.T) {
	assert.Equal(t, []string{"1 premium listing"}, decodeFeatures(`["1 premium listing"]`))
	assert.Equal(t, []string{}, decodeFeatures(""))
	assert.Equal(t, []string{}, decodeFeatures("garbage"))
}
