package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		date    *string
		want    int64
		wantErr bool
	}{
		{name: "rfc3339", date: Str("2024-03-05T10:20:30Z"), want: 1709634030},
		{name: "numeric offset without colon", date: Str("2024-03-05T05:20:30-0500"), want: 1709634030},
		{name: "fractional seconds", date: Str("2024-03-05T10:20:30.900Z"), want: 1709634030},
		{name: "missing", date: nil, wantErr: true},
		{name: "blank", date: Str("   "), wantErr: true},
		{name: "garbage", date: Str("yesterday"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Record{Date: tt.date}.Timestamp()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Unix())
		})
	}
}

func TestRecordJSONNulls(t *testing.T) {
	data, err := json.Marshal(Record{Title: Str("hello")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"hello","content":null,"url":null,"author":null,"postNumber":null,"date":null,"forum":null}`, string(data))
}

func TestStr(t *testing.T) {
	assert.Nil(t, Str(""))
	require.NotNil(t, Str("x"))
	assert.Equal(t, "x", *Str("x"))
}
