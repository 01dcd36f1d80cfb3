package coconut

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPublicParamsDeterministic(t *testing.T) {
	p1, err := NewPublicParams(4, []byte("test-label"), 2, 3)
	require.NoError(t, err)
	p2, err := NewPublicParams(4, []byte("test-label"), 2, 3)
	require.NoError(t, err)

	require.True(t, p1.GTilde.Equal(p2.GTilde))
	require.True(t, p1.G.Equal(p2.G))
	require.True(t, p1.H.Equal(p2.H))
	require.Len(t, p1.YTilde, 4)
	for k := range p1.YTilde {
		require.True(t, p1.YTilde[k].Equal(p2.YTilde[k]))
	}
}

func TestNewPublicParamsDistinctLabelsDiverge(t *testing.T) {
	p1, err := NewPublicParams(2, []byte("label-a"), 1, 1)
	require.NoError(t, err)
	p2, err := NewPublicParams(2, []byte("label-b"), 1, 1)
	require.NoError(t, err)

	require.False(t, p1.G.Equal(p2.G))
}

func TestNewPublicParamsRejectsBadShape(t *testing.T) {
	_, err := NewPublicParams(0, []byte("l"), 1, 1)
	requireBadShape(t, err)

	_, err = NewPublicParams(2, []byte("l"), 3, 2)
	requireBadShape(t, err)

	_, err = NewPublicParams(2, []byte("l"), 0, 2)
	requireBadShape(t, err)
}

func TestValidateIndices(t *testing.T) {
	params, err := NewPublicParams(3, []byte("l"), 1, 1)
	require.NoError(t, err)

	require.NoError(t, params.ValidateIndices("op", 0, 1, 2))
	requireBadShape(t, params.ValidateIndices("op", 3))
	requireBadShape(t, params.ValidateIndices("op", -1))
}

func requireBadShape(t *testing.T, err error) {
	t.Helper()
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, BadShape, cerr.Kind)
}
