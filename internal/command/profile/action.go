package profile

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-cct/internal/command"
	"github.com/lwmacct/251207-go-cct/internal/logging"
	"github.com/lwmacct/251207-go-cct/internal/platform"
	"github.com/lwmacct/251207-go-cct/pkg/keyval"
	"github.com/lwmacct/251207-go-cct/pkg/profile"
	"github.com/lwmacct/251207-go-cct/pkg/schema"
	"github.com/lwmacct/251207-go-cct/pkg/settings"
)

func setAction(_ context.Context, cmd *cli.Command) error {
	env, err := command.Setup(cmd)
	if err != nil {
		return err
	}
	cfg, logger := env.Config, env.Logger
	logger.Debug("Loaded config", "config", fmt.Sprintf("%+v", *cfg))

	name := cmd.String("name")
	path, err := profile.Path(cfg.Conan.Home, name)
	if err != nil {
		return err
	}

	policy, err := settings.ParsePolicy(cfg.Profile.ValuePolicy)
	if err != nil {
		return err
	}

	in, err := collect(cmd, name)
	if err != nil {
		logging.Critical(logger, err.Error())

		return err
	}

	force := cmd.Bool("force")
	validator := &settings.Validator{
		Schema: schema.Resolve(cfg.Conan.Home, logger),
		Force:  force,
		Policy: policy,
		Logger: logger,
	}
	if cfg.Profile.CppstdCheck {
		validator.Rules = append(validator.Rules, settings.CppstdRule{})
	}

	builder := &profile.Builder{
		Defaults:  platform.Detect().Defaults(),
		Validator: validator,
	}
	out, err := builder.Build(in)
	if err != nil {
		return err
	}
	logger.Debug("Resolved settings", "settings", out.Settings.String())

	return profile.Write(path, out, profile.WriteOptions{Force: force, Logger: logger})
}

// collect 将重复的 key=value flags 解析到对应分区。
func collect(cmd *cli.Command, name string) (*profile.Profile, error) {
	p := profile.New(name)
	targets := map[string]**keyval.Map{
		"setting":        &p.Settings,
		"option":         &p.Options,
		"conf":           &p.Conf,
		"build-requires": &p.BuildRequires,
		"tool-requires":  &p.ToolRequires,
		"env":            &p.Env,
		"buildenv":       &p.BuildEnv,
		"runenv":         &p.RunEnv,
	}

	for _, f := range keyvalFlags {
		m, err := keyval.Parse(cmd.StringSlice(f.name))
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", f.name, err)
		}
		*targets[f.name] = m
	}

	return p, nil
}

func showAction(_ context.Context, cmd *cli.Command) error {
	env, err := command.Setup(cmd)
	if err != nil {
		return err
	}

	path, err := profile.Path(env.Config.Conan.Home, cmd.String("name"))
	if err != nil {
		return err
	}

	p, err := profile.Read(path)
	if err != nil {
		logging.Critical(env.Logger, fmt.Sprintf("Could not read profile '%s'.", cmd.String("name")), "error", err)

		return err
	}

	return p.Encode(cmd.Root().Writer)
}
