// Package schema 加载并查询 Conan 的 settings.yml 参考模式。
//
// settings.yml 是嵌套映射，叶子为合法值列表或进一步的映射
// (映射的 key 视为合法值)，例如：
//
//	os: [Windows, Linux, Macos]
//	compiler:
//	  gcc:
//	    version: ["11", "12"]
//	    libcxx: [libstdc++, libstdc++11]
//
// 值统一保留 YAML 原文 (版本号 "5.10" 不会被当作浮点数截断)。
package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	yamlv3 "go.yaml.in/yaml/v3"
)

// FileName 参考模式文件名。
const FileName = "settings.yml"

// Any 表示接受任意值的特殊取值。
const Any = "ANY"

// nullValue null 在值列表中的表示，与 Conan 保持一致。
const nullValue = "None"

// node 模式树中的一个节点。
type node struct {
	keys     []string // 映射 key 的文档顺序
	children map[string]*node
	values   []string // 列表或标量叶子
}

func (n *node) isMapping() bool { return n.children != nil }

// Schema 已解析的参考模式。
type Schema struct {
	root   *node
	source string
}

// Parse 解析 YAML 文档。根节点必须为映射。
func Parse(content []byte) (*Schema, error) {
	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("parse schema: empty document")
	}

	root := doc.Content[0]
	if root.Kind != yamlv3.MappingNode {
		return nil, errors.New("parse schema: root must be a mapping")
	}

	return &Schema{root: convert(root)}, nil
}

// Load 读取并解析 path 指向的模式文件。
func Load(path string) (*Schema, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path comes from the conan home
	if err != nil {
		return nil, err
	}

	s, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.source = path

	return s, nil
}

// Source 返回加载来源路径，Parse 得到的 Schema 返回空字符串。
func (s *Schema) Source() string {
	return s.source
}

func convert(n *yamlv3.Node) *node {
	if n.Kind == yamlv3.AliasNode && n.Alias != nil {
		n = n.Alias
	}

	switch n.Kind {
	case yamlv3.MappingNode:
		out := &node{children: make(map[string]*node, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := scalarText(n.Content[i])
			if _, dup := out.children[key]; !dup {
				out.keys = append(out.keys, key)
			}
			out.children[key] = convert(n.Content[i+1])
		}

		return out
	case yamlv3.SequenceNode:
		out := &node{values: make([]string, 0, len(n.Content))}
		for _, item := range n.Content {
			if item.Kind == yamlv3.AliasNode && item.Alias != nil {
				item = item.Alias
			}
			if item.Kind != yamlv3.ScalarNode {
				continue
			}
			out.values = append(out.values, scalarText(item))
		}

		return out
	case yamlv3.ScalarNode:
		if isNull(n) {
			return &node{}
		}

		return &node{values: []string{n.Value}}
	default:
		return &node{}
	}
}

func isNull(n *yamlv3.Node) bool {
	return n.Kind == yamlv3.ScalarNode && n.ShortTag() == "!!null"
}

func scalarText(n *yamlv3.Node) string {
	if isNull(n) {
		return nullValue
	}

	return n.Value
}

// Lookup 沿 path 遍历模式并返回合法值集合。
//
// 命中映射时返回其 key (文档顺序)，命中列表时返回列表本身。
// 任一段缺失、在路径结束前遇到列表/标量，或结果为空时返回 false。
func (s *Schema) Lookup(path []string) ([]string, bool) {
	if s == nil || s.root == nil || len(path) == 0 {
		return nil, false
	}

	cur := s.root
	for _, seg := range path {
		if !cur.isMapping() {
			return nil, false
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}

	var values []string
	if cur.isMapping() {
		values = slices.Clone(cur.keys)
	} else {
		values = slices.Clone(cur.values)
	}
	if len(values) == 0 {
		return nil, false
	}

	return values, true
}

// Allows 判断 value 是否在合法值集合中，集合包含 [Any] 时接受任意值。
func Allows(values []string, value string) bool {
	return slices.Contains(values, Any) || slices.Contains(values, value)
}

// Candidates 返回模式文件的查找顺序：
//  1. <home>/settings.yml
//  2. ~/.conan/settings.yml (旧版位置)
func Candidates(home string) []string {
	paths := []string{filepath.Join(home, FileName)}
	if userHome, err := os.UserHomeDir(); err == nil {
		legacy := filepath.Join(userHome, ".conan", FileName)
		if legacy != paths[0] {
			paths = append(paths, legacy)
		}
	}

	return paths
}

// Resolve 在 home 中查找并加载模式，失败时回退到旧版位置。
//
// 没有可用的模式时返回 nil，调用方应跳过校验；该情况只记录警告。
func Resolve(home string, logger *slog.Logger) *Schema {
	paths := Candidates(home)

	path := paths[0]
	if _, err := os.Stat(path); err != nil && len(paths) > 1 {
		logger.Warn(fmt.Sprintf(
			"settings.yml does not exist in the user specified conan home '%s'. Attempting to fall back to '%s'",
			path, paths[1]))
		path = paths[1]
	}

	s, err := Load(path)
	if err != nil {
		logger.Warn(fmt.Sprintf(
			"Could not open settings.yml: '%s' does not exist. Settings not validated. Continuing.", path),
			"error", err)

		return nil
	}
	logger.Debug("Loaded settings schema", "path", path)

	return s
}
