package update

import (
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec string
		want Kind
	}{
		{"", Absent},
		{"2.1.0", Exact},
		{"1.0.0-beta.1", Exact},
		{"v2.1.0", Exact},
		{"^2.1.0", Range},
		{"~1.2", Range},
		{">=1 <2", Range},
		{"16", Range},
		{"1.x", Range},
		{"*", Range},
		{"latest", Tag},
		{"next", Tag},
		{"beta", Tag},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Classify(tt.spec), tt.spec)
	}
}

func TestNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		spec   string
		latest string
		want   string
	}{
		{"absent stays absent", "", "2.1.1", ""},
		{"exact upgraded", "2.1.0", "2.1.1", "2.1.1"},
		{"exact current", "2.1.1", "2.1.1", "2.1.1"},
		{"exact never downgraded", "3.0.0", "2.1.1", "3.0.0"},
		{"exact prerelease upgraded", "1.0.0-beta.1", "1.0.0", "1.0.0"},
		{"exact keeps v prefix", "v1.0.0", "2.0.0", "v2.0.0"},
		{"caret satisfied", "^2.1.0", "2.1.1", "^2.1.0"},
		{"caret outside", "^2.1.0", "3.0.0", "^3.0.0"},
		{"caret partial", "^1", "3.2.1", "^3"},
		{"tilde partial", "~1.2", "3.0.5", "~3.0"},
		{"tilde full", "~1.2.3", "1.3.0", "~1.3.0"},
		{"wildcard minor", "1.x", "3.4.0", "3.x"},
		{"wildcard patch", "1.2.x", "3.4.0", "3.4.x"},
		{"bare major", "16", "18.2.0", "18"},
		{"bare major satisfied", "18", "18.2.0", "18"},
		{"comparison", ">=1.0.0", "3.0.0", ">=1.0.0"},
		{"compound", ">=1 <2", "3.0.0", ">=3.0.0"},
		{"disjunction", "^1 || ^2", "3.1.0", "^3.1.0"},
		{"range floor above latest", "^5", "3.0.0", "^5"},
		{"compound floor above latest", ">=5 <6", "3.0.0", ">=5 <6"},
		{"star", "*", "3.0.0", "*"},
		{"prerelease latest keeps full precision", "^1", "3.0.0-rc.1", "^3.0.0-rc.1"},
		{"tag latest", "latest", "2.1.1", "latest"},
		{"tag next", "next", "3.0.0-rc.1", "next"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Next(tt.spec, tt.latest)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNextIdempotent(t *testing.T) {
	t.Parallel()

	specs := []string{"", "2.1.0", "^2.1.0", "^1", "~1.2", "1.x", "16", ">=1 <2", "^1 || ^2", "latest", "^5"}
	for _, latest := range []string{"2.1.1", "3.0.0", "3.0.0-rc.1"} {
		for _, spec := range specs {
			once, err := Next(spec, latest)
			require.NoError(t, err)
			twice, err := Next(once, latest)
			require.NoError(t, err)
			require.Equal(t, once, twice, "spec %q latest %q", spec, latest)
		}
	}
}

func TestNextInvalidLatest(t *testing.T) {
	t.Parallel()

	for _, latest := range []string{"", "latest", "not-a-version"} {
		_, err := Next("1.0.0", latest)
		require.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidVersion), latest)
	}
}
