package tagname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "valid two part name", input: "valid-name"},
		{name: "multiple hyphens", input: "ui-data-table"},
		{name: "digits", input: "ui-h1-title2"},
		{name: "empty", input: "", wantErr: ErrEmpty},
		{name: "no hyphen", input: "nohyphen", wantErr: ErrNoSeparator},
		{name: "upper case", input: "Ui-Card", wantErr: ErrInvalidCharacters},
		{name: "leading digit", input: "1-card", wantErr: ErrInvalidCharacters},
		{name: "reserved", input: "font-face", wantErr: ErrInvalidCharacters},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPrefixAndLocalName(t *testing.T) {
	assert.Equal(t, "ui", Prefix("ui-data-table"))
	assert.Equal(t, "data-table", LocalName("ui-data-table"))
	assert.Equal(t, "", Prefix("div"))
	assert.Equal(t, "div", LocalName("div"))
	assert.Equal(t, "ui-card", Join("ui", "card"))
	assert.Equal(t, "card", Join("", "card"))
}

func TestIsNative(t *testing.T) {
	assert.True(t, IsNative("div"))
	assert.True(t, IsNative("template"))
	assert.True(t, IsNative("SLOT"))
	assert.True(t, IsNative("font-face"))
	assert.False(t, IsNative("ui-card"))
	assert.False(t, IsNative(""))
}
