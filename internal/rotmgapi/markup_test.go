package rotmgapi_test

import (
	"testing"

	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkupField(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		want    string
		wantErr error
	}{
		{
			name:  "simple",
			body:  "<Account><AccessToken>abc</AccessToken></Account>",
			field: "AccessToken",
			want:  "abc",
		},
		{
			name:  "adjacent markers capture empty string",
			body:  "<AccessToken></AccessToken>",
			field: "AccessToken",
			want:  "",
		},
		{
			name:  "stops at first closing marker",
			body:  "<AccessToken>a</AccessToken>b</AccessToken>",
			field: "AccessToken",
			want:  "a",
		},
		{
			name:  "first pair wins",
			body:  "<AccessToken>one</AccessToken><AccessToken>two</AccessToken>",
			field: "AccessToken",
			want:  "one",
		},
		{
			name:  "no trimming or decoding",
			body:  "<AccessToken>  a&amp;b  </AccessToken>",
			field: "AccessToken",
			want:  "  a&amp;b  ",
		},
		{
			name:    "does not match longer marker names",
			body:    "<AccessTokenTimestamp>1</AccessTokenTimestamp>",
			field:   "AccessToken",
			wantErr: rotmgapi.ErrFieldMissing,
		},
		{
			name:    "capture does not span lines",
			body:    "<AccessToken>a\nb</AccessToken>",
			field:   "AccessToken",
			wantErr: rotmgapi.ErrFieldMissing,
		},
		{
			name:  "later single-line pair after a multi-line one",
			body:  "<AccessToken>a\nb</AccessToken><AccessToken>c</AccessToken>",
			field: "AccessToken",
			want:  "c",
		},
		{
			name:    "missing closing marker",
			body:    "<AccessToken>abc",
			field:   "AccessToken",
			wantErr: rotmgapi.ErrFieldMissing,
		},
		{
			name:    "invalid utf-8 capture",
			body:    "<AccessToken>\xff\xfe</AccessToken>",
			field:   "AccessToken",
			wantErr: rotmgapi.ErrFieldMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rotmgapi.NewMarkup(tt.body).Field(tt.field)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
