package blob

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Bio        *string  `json:"bio,omitempty"`
	Experience *int     `json:"experience,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type slot struct {
	Start string `json:"start_time"`
}

func TestDecodeFallsBackToZeroValue(t *testing.T) {
	cases := map[string]types.JSONText{
		"nil":       nil,
		"empty":     types.JSONText(""),
		"spaces":    types.JSONText("   "),
		"null":      types.JSONText("null"),
		"malformed": types.JSONText("{bio:"),
		"wrongType": types.JSONText(`[1,2,3]`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := Decode[sample](raw)
			assert.Nil(t, got.Bio)
			assert.Nil(t, got.Experience)
			assert.Empty(t, got.Tags)
		})
	}
}

func TestDecodeReadsValidObject(t *testing.T) {
	got := Decode[sample](types.JSONText(`{"bio":"hi","experience":4,"tags":["ielts"]}`))
	require.NotNil(t, got.Bio)
	assert.Equal(t, "hi", *got.Bio)
	assert.Equal(t, 4, Value(got.Experience))
	assert.Equal(t, []string{"ielts"}, got.Tags)
}

func TestDecodeListFallsBackToEmptySlice(t *testing.T) {
	for _, raw := range []types.JSONText{nil, types.JSONText("null"), types.JSONText("{}"), types.JSONText("[oops")} {
		got := DecodeList[slot](raw)
		assert.NotNil(t, got)
		assert.Len(t, got, 0)
	}

	got := DecodeList[slot](types.JSONText(`[{"start_time":"09:00"}]`))
	assert.Equal(t, []slot{{Start: "09:00"}}, got)
}

func TestEncodeOmitsUnsuppliedMembers(t *testing.T) {
	raw, err := Encode(sample{Bio: Ptr("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bio":""}`, raw.String())

	raw, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw.String())
}

func TestEncodeList(t *testing.T) {
	raw, err := EncodeList[slot](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw.String())

	raw, err = EncodeList([]slot{{Start: "10:00"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"start_time":"10:00"}]`, raw.String())
}

func TestAnySet(t *testing.T) {
	assert.False(t, AnySet())
	assert.False(t, AnySet(false, false))
	assert.True(t, AnySet(false, true))
}

func TestEmptyValuesAreIndependentCopies(t *testing.T) {
	a := EmptyObject()
	a[0] = '['
	assert.Equal(t, "{}", EmptyObject().String())
}
