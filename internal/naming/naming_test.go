package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("prefix strategy", func(t *testing.T) {
		t.Parallel()
		name := Resolve("feature/user-auth", StrategyPrefix, "myapp")
		require.Equal(t, "myapp_feature_user_auth", name)
	})

	t.Run("suffix strategy", func(t *testing.T) {
		t.Parallel()
		name := Resolve("feature/user-auth", StrategySuffix, "myapp")
		require.Equal(t, "feature_user_auth_myapp", name)
	})

	t.Run("replace strategy with token", func(t *testing.T) {
		t.Parallel()
		name := Resolve("feature/auth", StrategyReplace, "app_{branch}_db")
		require.Equal(t, "app_feature_auth_db", name)
	})

	t.Run("replace strategy without token uses branch alone", func(t *testing.T) {
		t.Parallel()
		name := Resolve("feature/auth", StrategyReplace, "myapp")
		require.Equal(t, "feature_auth", name)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		first := Resolve("Feature/User-Auth", StrategyPrefix, "pgbranch")
		for i := 0; i < 10; i++ {
			require.Equal(t, first, Resolve("Feature/User-Auth", StrategyPrefix, "pgbranch"))
		}
	})

	t.Run("long names are truncated with a stable hash suffix", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("abcdefgh/", 20)
		name := Resolve(long, StrategyPrefix, "pgbranch")
		require.LessOrEqual(t, len(name), MaxIdentifierLength)
		require.Equal(t, name, Resolve(long, StrategyPrefix, "pgbranch"))

		// A different long branch must not silently truncate to the same name.
		other := Resolve(long+"x", StrategyPrefix, "pgbranch")
		require.NotEqual(t, name, other)
	})
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		branch string
		want   string
	}{
		{"path separators", "feature/user-auth", "feature_user_auth"},
		{"uppercase", "Feature/AUTH", "feature_auth"},
		{"consecutive separators collapse", "feature//fix--bug", "feature_fix_bug"},
		{"trailing separator trimmed", "feature/", "feature"},
		{"leading digit prefixed", "123-hotfix", "_123_hotfix"},
		{"dollar sign preserved", "fix$cost", "fix$cost"},
		{"everything invalid falls back", "///", "branch"},
		{"empty falls back", "", "branch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Sanitize(tt.branch))
		})
	}
}
