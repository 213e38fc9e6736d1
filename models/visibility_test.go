package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityReadableBy(t *testing.T) {
	const owner, other, anon uint = 7, 8, 0

	cases := []struct {
		name   string
		vis    Visibility
		viewer uint
		want   bool
	}{
		{"visible to anyone", VisibilityVisible, other, true},
		{"visible to anonymous", VisibilityVisible, anon, true},
		{"visible to owner", VisibilityVisible, owner, true},
		{"hidden to owner", VisibilityHidden, owner, true},
		{"hidden from others", VisibilityHidden, other, false},
		{"hidden from anonymous", VisibilityHidden, anon, false},
		{"deleted from owner", VisibilityDeleted, owner, false},
		{"deleted from others", VisibilityDeleted, other, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.vis.ReadableBy(owner, tc.viewer))
		})
	}
}

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("hidden")
	require.NoError(t, err)
	assert.Equal(t, VisibilityHidden, v)

	v, err = ParseVisibility("Visible")
	require.NoError(t, err)
	assert.Equal(t, VisibilityVisible, v)

	_, err = ParseVisibility("archived")
	assert.Error(t, err)
}

func TestVisibilityJSON(t *testing.T) {
	b, err := json.Marshal(VisibilityHidden)
	require.NoError(t, err)
	assert.Equal(t, `"Hidden"`, string(b))

	var v Visibility
	require.NoError(t, json.Unmarshal([]byte(`"Deleted"`), &v))
	assert.Equal(t, VisibilityDeleted, v)

	assert.Error(t, json.Unmarshal([]byte(`"gone"`), &v))
}

func TestPostReadableByDelegates(t *testing.T) {
	p := Post{UserID: 3, Visibility: VisibilityHidden}
	assert.True(t, p.ReadableBy(3))
	assert.False(t, p.ReadableBy(4))

	r := Reply{UserID: 3, Visibility: VisibilityDeleted}
	assert.False(t, r.ReadableBy(3))
}
