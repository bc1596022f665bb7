package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-cct/pkg/expand"
)

// options 配置加载选项。
type options struct {
	cmd         *cli.Command
	configPaths []string
	envPrefix   string
	logger      *slog.Logger
}

// Option 配置加载选项函数。
type Option func(*options)

// WithCommand 绑定 CLI 命令，显式设置的 flags 覆盖配置 (最高优先级)。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithConfigPaths 设置配置文件搜索路径，命中首个文件即停止。
// 不传参数时不读取任何配置文件。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = append([]string{}, paths...)
	}
}

// WithEnvPrefix 设置环境变量前缀，默认为 [EnvPrefix]。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithLogger 设置加载过程的调试日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// DefaultPaths 返回默认配置文件的搜索顺序。
//
// 优先级 (从高到低)：
//  1. ./.cct.yaml - 当前目录
//  2. ~/.cct.yaml - 用户主目录
//  3. /etc/cct/config.yaml - 系统级配置
func DefaultPaths() []string {
	paths := []string{"." + AppName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName+".yaml"))
	}

	return append(paths, "/etc/"+AppName+"/config.yaml")
}

// Load 以 defaults 为基础按优先级合并配置。
//
// 配置 key 由 json tag 定义；默认值与配置文件中的 ${VAR} 会被展开。
func Load(defaults Config, opts ...Option) (*Config, error) {
	o := &options{envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(o)
	}
	if o.configPaths == nil {
		o.configPaths = DefaultPaths()
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	configMap, err := toMap(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	if err := expandStrings(configMap); err != nil {
		return nil, fmt.Errorf("expand defaults: %w", err)
	}

	for _, path := range o.configPaths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			continue
		}

		expanded, err := expand.String(string(content))
		if err != nil {
			return nil, fmt.Errorf("expand template in %s: %w", path, err)
		}
		fileMap, err := parseConfigBytes(path, []byte(expanded))
		if err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		mergeMaps(configMap, fileMap)
		logger.Debug("Loaded config from file", "path", path)

		break
	}

	keys := collectKeys(reflect.TypeFor[Config](), "")

	if o.envPrefix != "" {
		for envKey, key := range envBindings(o.envPrefix, keys) {
			if val, ok := os.LookupEnv(envKey); ok && val != "" {
				setByPath(configMap, key.path, val)
				logger.Debug("Loaded env binding", "env", envKey, "path", key.path)
			}
		}
	}

	if o.cmd != nil {
		for _, key := range keys {
			flag := FlagName(key.path)
			if !o.cmd.IsSet(flag) {
				continue
			}
			switch key.kind {
			case reflect.Bool:
				setByPath(configMap, key.path, o.cmd.Bool(flag))
			case reflect.String:
				setByPath(configMap, key.path, o.cmd.String(flag))
			default:
				// 仅支持 string 与 bool
			}
		}
	}

	var cfg Config
	if err := decode(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// FlagName 返回配置 key 对应的 CLI flag 名称 ("." 替换为 "-")。
//
//   - conan.home → conan-home
//   - profile.value-policy → profile-value-policy
func FlagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

// configKey 叶子配置项。
type configKey struct {
	path string
	kind reflect.Kind
}

// collectKeys 按 json tag 递归收集叶子 key。
func collectKeys(typ reflect.Type, prefix string) []configKey {
	var keys []configKey
	for i := range typ.NumField() {
		field := typ.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, collectKeys(field.Type, name)...)

			continue
		}
		keys = append(keys, configKey{path: name, kind: field.Type.Kind()})
	}

	return keys
}

// envBindings 生成环境变量名到配置 key 的映射。
//
// "." 与 "-" 转为 "_" 并大写，例如 profile.value-policy → CCT_PROFILE_VALUE_POLICY。
func envBindings(prefix string, keys []configKey) map[string]configKey {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	out := make(map[string]configKey, len(keys))
	for _, key := range keys {
		out[prefix+strings.ToUpper(replacer.Replace(key.path))] = key
	}

	return out
}

func toMap(cfg Config) (map[string]any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func expandStrings(m map[string]any) error {
	for key, value := range m {
		switch typed := value.(type) {
		case string:
			expanded, err := expand.String(typed)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			m[key] = expanded
		case map[string]any:
			if err := expandStrings(typed); err != nil {
				return fmt.Errorf("%s.%w", key, err)
			}
		}
	}

	return nil
}

func parseConfigBytes(path string, content []byte) (map[string]any, error) {
	var raw any
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, &raw)
	} else {
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, err
	}

	normalized := normalizeMapKeys(raw)
	if normalized == nil {
		return map[string]any{}, nil
	}
	configMap, ok := normalized.(map[string]any)
	if !ok {
		return nil, errors.New("config root must be object")
	}

	return configMap, nil
}

func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = normalizeMapKeys(value)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeMapKeys(value)
		}

		return out
	default:
		return val
	}
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, valueMap)

				continue
			}
		}
		dst[key] = value
	}
}

func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func decode(data map[string]any, out *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
