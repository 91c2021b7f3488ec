package actions

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"pgbranch.dev/pgbranch/internal/runtime"
)

// ShowConfigOptions contains options for the config command
type ShowConfigOptions struct{}

// ShowConfigAction prints the effective configuration, defaults applied.
func ShowConfigAction(ctx *runtime.Context, _ ShowConfigOptions) error {
	splog := ctx.Splog

	data, err := yaml.Marshal(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	splog.Info("# %s", ctx.ConfigPath)
	splog.Info("%s", string(data))
	return nil
}
